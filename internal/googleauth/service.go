package googleauth

import (
	"errors"
	"sort"
)

type Service string

const (
	ServiceSheets Service = "sheets"
	ServiceDrive  Service = "drive"
)

var errUnknownService = errors.New("unknown service")

// AllServices lists the APIs a provisioning run talks to.
func AllServices() []Service {
	return []Service{ServiceSheets, ServiceDrive}
}

func Scopes(service Service) ([]string, error) {
	switch service {
	case ServiceSheets:
		return []string{"https://www.googleapis.com/auth/spreadsheets"}, nil
	case ServiceDrive:
		return []string{"https://www.googleapis.com/auth/drive"}, nil
	default:
		return nil, errUnknownService
	}
}

func ScopesForServices(services []Service) ([]string, error) {
	set := make(map[string]struct{})
	for _, svc := range services {
		scopes, err := Scopes(svc)
		if err != nil {
			return nil, err
		}
		for _, s := range scopes {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	// stable ordering (useful for tests + log diffs)
	sort.Strings(out)
	return out, nil
}
