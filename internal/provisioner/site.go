package provisioner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/agent-site-provisioner/internal/config"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/models"
)

const defaultBio = "Experienced real estate professional"

// WebflowCreator builds the site creation payload for the website builder.
// The payload is returned as is; nothing is submitted to Webflow.
type WebflowCreator struct {
	apiKey   string
	template string
	newID    func() string
	log      logrus.FieldLogger
}

func NewWebflowCreator(cfg config.WebflowConfig, log logrus.FieldLogger) *WebflowCreator {
	return &WebflowCreator{
		apiKey:   cfg.APIKey,
		template: cfg.Template,
		newID:    func() string { return uuid.New().String() },
		log:      log.WithField("step", "site"),
	}
}

func (c *WebflowCreator) Create(ctx context.Context, profile models.AgentProfile, plan models.SitemapPlan) (models.SiteCreationResult, error) {
	if err := requireFields(profile, requiredFields...); err != nil {
		return models.SiteCreationResult{}, fmt.Errorf("create site: %w", err)
	}

	bio := defaultBio
	if profile.Bio != nil {
		bio = *profile.Bio
	}

	site := models.SiteCreationResult{
		ID:       c.newID(),
		Name:     fmt.Sprintf("%s Real Estate", profile.AgentName),
		Template: c.template,
		CustomAttributes: models.CustomAttributes{
			AgentName:   profile.AgentName,
			Brokerage:   profile.Brokerage,
			Phone:       profile.Phone,
			Email:       profile.Email,
			CityArea:    profile.CityArea,
			HeadshotURL: profile.Headshot,
			Bio:         bio,
		},
	}

	c.log.WithFields(logrus.Fields{
		"agent_name": profile.AgentName,
		"site_id":    site.ID,
		"pages":      len(plan.Pages),
	}).Debug("site payload built")

	return site, nil
}
