package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ClientSeed is one entry of the clients file.
//
//	clients:
//	  - id: enquiry-web
//	    description: Enquiry web app
//	    secret: s3cret
//	    redirect_uris: ["http://localhost:3000/callback"]
type ClientSeed struct {
	ID           string   `yaml:"id"`
	Description  string   `yaml:"description"`
	Secret       string   `yaml:"secret"`
	RedirectURIs []string `yaml:"redirect_uris"`
	Scopes       []string `yaml:"scopes"`
}

type clientsFile struct {
	Clients []ClientSeed `yaml:"clients"`
}

// LoadClientSeeds reads registered clients from a YAML file. An empty path
// yields no seeds.
func LoadClientSeeds(path string) ([]ClientSeed, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read clients file %s", path)
	}
	var f clientsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse clients file %s", path)
	}
	for i, c := range f.Clients {
		if c.ID == "" {
			return nil, errors.Errorf("clients file %s: entry %d has no id", path, i)
		}
		if len(c.RedirectURIs) == 0 {
			return nil, errors.Errorf("clients file %s: client %s has no redirect_uris", path, c.ID)
		}
	}
	return f.Clients, nil
}
