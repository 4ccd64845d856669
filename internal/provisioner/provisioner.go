package provisioner

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/agent-site-provisioner/internal/config"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/models"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrEmptyName    = errors.New("agent name has no tokens")
)

type Planner interface {
	Plan(ctx context.Context, profile models.AgentProfile) (models.SitemapPlan, error)
}

type SiteCreator interface {
	Create(ctx context.Context, profile models.AgentProfile, plan models.SitemapPlan) (models.SiteCreationResult, error)
}

type SubdomainAllocator interface {
	Allocate(ctx context.Context, profile models.AgentProfile) (string, error)
}

// Generator runs the sitemap, site and subdomain steps for one agent.
// It holds no per-call state and is safe for concurrent use.
type Generator struct {
	planner   Planner
	creator   SiteCreator
	allocator SubdomainAllocator
	log       logrus.FieldLogger
}

func New(planner Planner, creator SiteCreator, allocator SubdomainAllocator, log logrus.FieldLogger) *Generator {
	return &Generator{
		planner:   planner,
		creator:   creator,
		allocator: allocator,
		log:       log,
	}
}

// NewFromConfig wires the Relume, Webflow and Cloudflare steps from cfg.
func NewFromConfig(cfg *config.Config, log logrus.FieldLogger) *Generator {
	return New(
		NewRelumePlanner(cfg.Relume, log),
		NewWebflowCreator(cfg.Webflow, log),
		NewCloudflareAllocator(cfg.Cloudflare, cfg.Webflow.CNAMETarget, log),
		log,
	)
}

// GenerateWebsite returns the record for the agent's new site, or nil if any
// step failed. The cause is only written to the log.
func (g *Generator) GenerateWebsite(ctx context.Context, profile models.AgentProfile) (record *models.WebsiteRecord) {
	defer func() {
		if r := recover(); r != nil {
			g.log.WithField("panic", r).Error("website generation error")
			record = nil
		}
	}()

	record, err := g.generate(ctx, profile)
	if err != nil {
		g.log.WithError(err).Error("website generation error")
		return nil
	}
	return record
}

func (g *Generator) generate(ctx context.Context, profile models.AgentProfile) (*models.WebsiteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan, err := g.planner.Plan(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	site, err := g.creator.Create(ctx, profile, plan)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hostname, err := g.allocator.Allocate(ctx, profile)
	if err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"agent_name": profile.AgentName,
		"hostname":   hostname,
		"site_id":    site.ID,
	}).Info("website created")

	return &models.WebsiteRecord{
		WebsiteURL:     fmt.Sprintf("https://%s", hostname),
		SiteIdentifier: site.ID,
		Status:         models.StatusCreated,
	}, nil
}

type profileField string

const (
	fieldAgentName profileField = "agent_name"
	fieldBrokerage profileField = "brokerage"
	fieldPhone     profileField = "phone"
	fieldEmail     profileField = "email"
	fieldCityArea  profileField = "city_area"
)

var requiredFields = []profileField{fieldAgentName, fieldBrokerage, fieldPhone, fieldEmail, fieldCityArea}

func requireFields(profile models.AgentProfile, fields ...profileField) error {
	values := map[profileField]string{
		fieldAgentName: profile.AgentName,
		fieldBrokerage: profile.Brokerage,
		fieldPhone:     profile.Phone,
		fieldEmail:     profile.Email,
		fieldCityArea:  profile.CityArea,
	}
	for _, f := range fields {
		if values[f] == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f)
		}
	}
	return nil
}
