package provisioner

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/agent-site-provisioner/internal/config"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/models"
)

var (
	sitemapPages      = []string{"home", "about", "listings", "services", "contact"}
	sitemapComponents = []string{"hero", "property-search", "testimonials", "contact-form"}
)

// RelumePlanner produces the sitemap for an agent site. The planning prompt is
// built from the profile but the Relume API is not called, so every agent
// gets the same pages and components.
type RelumePlanner struct {
	apiKey string
	log    logrus.FieldLogger
}

func NewRelumePlanner(cfg config.RelumeConfig, log logrus.FieldLogger) *RelumePlanner {
	return &RelumePlanner{
		apiKey: cfg.APIKey,
		log:    log.WithField("step", "sitemap"),
	}
}

func (p *RelumePlanner) Plan(ctx context.Context, profile models.AgentProfile) (models.SitemapPlan, error) {
	if err := requireFields(profile, fieldAgentName, fieldCityArea); err != nil {
		return models.SitemapPlan{}, fmt.Errorf("plan sitemap: %w", err)
	}

	prompt := p.buildPrompt(profile)
	p.log.WithField("agent_name", profile.AgentName).Debug("sitemap prompt built")

	return models.SitemapPlan{
		Pages:      append([]string(nil), sitemapPages...),
		Components: append([]string(nil), sitemapComponents...),
		Prompt:     prompt,
	}, nil
}

func (p *RelumePlanner) buildPrompt(profile models.AgentProfile) string {
	return fmt.Sprintf(`Create a professional real estate website for %s.
Pages: Home, About, Listings, Services, Contact.
Market focus: %s real estate.
Include lead capture forms and property search.`, profile.AgentName, profile.CityArea)
}
