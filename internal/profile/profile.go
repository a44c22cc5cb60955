package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Service is one line of the business's offering with its published price.
type Service struct {
	Name     string `yaml:"name"`
	Summary  string `yaml:"summary"`
	Price    string `yaml:"price"`
	Timeline string `yaml:"timeline"`
}

// Profile holds the static business details the canned replies are rendered
// from. Responses optionally overrides reply templates keyed by intent name.
type Profile struct {
	Name      string            `yaml:"name"`
	Email     string            `yaml:"email"`
	Phone     string            `yaml:"phone"`
	Hours     string            `yaml:"hours"`
	Portfolio []string          `yaml:"portfolio"`
	Services  []Service         `yaml:"services"`
	Responses map[string]string `yaml:"responses,omitempty"`
}

func Default() Profile {
	return Profile{
		Name:  "Synapse Digital",
		Email: "hello@synapsedigital.in",
		Phone: "+91 98765 43210",
		Hours: "Mon-Sat, 10:00-19:00 IST (24/7 support for active clients)",
		Portfolio: []string{
			"E-commerce storefront for a Jaipur handicrafts brand",
			"Appointment booking app for a Pune dental clinic",
			"Corporate site and SEO retainer for a logistics startup",
		},
		Services: []Service{
			{Name: "Website Development", Summary: "Modern, responsive websites that convert visitors into customers", Price: "₹15,000 onwards", Timeline: "1-3 weeks"},
			{Name: "Mobile Apps", Summary: "Native and cross-platform apps for iOS and Android", Price: "₹40,000 onwards", Timeline: "4-8 weeks"},
			{Name: "Video Editing", Summary: "Professional video production and post-production", Price: "₹2,000 per video", Timeline: "2-5 days"},
			{Name: "PPT Design", Summary: "Presentations that make an impact", Price: "₹300 per slide", Timeline: "1-3 days"},
			{Name: "SEO Services", Summary: "Rank higher on Google and get more organic traffic", Price: "₹8,000 per month", Timeline: "ongoing, results in 2-3 months"},
			{Name: "IT Services", Summary: "Complete IT solutions for your business needs", Price: "custom quote", Timeline: "scoped per engagement"},
		},
	}
}

// Load reads a YAML profile. Fields left empty in the file keep their
// default values.
func Load(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	return merge(Default(), p), nil
}

func merge(base, over Profile) Profile {
	if strings.TrimSpace(over.Name) != "" {
		base.Name = over.Name
	}
	if strings.TrimSpace(over.Email) != "" {
		base.Email = over.Email
	}
	if strings.TrimSpace(over.Phone) != "" {
		base.Phone = over.Phone
	}
	if strings.TrimSpace(over.Hours) != "" {
		base.Hours = over.Hours
	}
	if len(over.Portfolio) > 0 {
		base.Portfolio = over.Portfolio
	}
	if len(over.Services) > 0 {
		base.Services = over.Services
	}
	if len(over.Responses) > 0 {
		base.Responses = over.Responses
	}
	return base
}

// ServiceNames returns the service names in catalogue order.
func (p Profile) ServiceNames() []string {
	out := make([]string, 0, len(p.Services))
	for _, s := range p.Services {
		out = append(out, s.Name)
	}
	return out
}
