package inventory

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// SiteSource supplies per-device site labels from an external
// device-documentation system (a NetBox export, typically). A present,
// non-empty value takes precedence over the site declared in the inventory
// file; absent devices keep their declared value. Site is the only field
// accepted from this source.
type SiteSource interface {
	SiteFor(hostname, managementIP string) (string, bool)
}

// FileSiteSource is a SiteSource backed by a YAML export keyed by hostname,
// with an optional management-IP qualifier for duplicated hostnames.
//
//	sites:
//	  core-rtr-01: dc-east
//	  spine-01@10.255.0.1: dc-west
type FileSiteSource struct {
	sites map[string]string
}

type siteFile struct {
	Sites map[string]string `yaml:"sites"`
}

// LoadSiteSource reads a site export file.
func LoadSiteSource(path string) (*FileSiteSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.NewLoadError(path, err.Error())
	}
	var file siteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, util.NewLoadError(path, err.Error())
	}
	return &FileSiteSource{sites: file.Sites}, nil
}

// NewSiteSource builds a SiteSource from an in-memory map (tests, API layer).
func NewSiteSource(sites map[string]string) *FileSiteSource {
	return &FileSiteSource{sites: sites}
}

// SiteFor looks up the site for a device. The IP-qualified key wins over
// the bare hostname key.
func (s *FileSiteSource) SiteFor(hostname, managementIP string) (string, bool) {
	if s == nil || s.sites == nil {
		return "", false
	}
	if site, ok := s.sites[hostname+"@"+managementIP]; ok {
		return site, true
	}
	site, ok := s.sites[hostname]
	return site, ok
}
