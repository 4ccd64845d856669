package provisioner

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudflare/cloudflare-go"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/agent-site-provisioner/internal/config"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/models"
)

// Subdomain derives the DNS label for an agent: lowercased, whitespace removed,
// and the last name token appended a second time. Characters outside
// [a-z0-9-] (apostrophes, accents) are kept as they are.
func Subdomain(agentName string) (string, error) {
	tokens := strings.Fields(strings.ToLower(agentName))
	if len(tokens) == 0 {
		return "", ErrEmptyName
	}

	// "Jane Smith" -> "janesmithsmith". The repeated surname looks like a bug
	// but hostnames are derived this way; keep it until that is decided.
	return strings.Join(tokens, "") + tokens[len(tokens)-1], nil
}

// CloudflareAllocator reserves the agent's hostname under the root domain.
// The CNAME record is prepared in memory and never sent to Cloudflare.
type CloudflareAllocator struct {
	apiToken   string
	zoneID     string
	rootDomain string
	target     string
	ttl        int
	log        logrus.FieldLogger
}

func NewCloudflareAllocator(cfg config.CloudflareConfig, target string, log logrus.FieldLogger) *CloudflareAllocator {
	return &CloudflareAllocator{
		apiToken:   cfg.APIToken,
		zoneID:     cfg.ZoneID,
		rootDomain: cfg.RootDomain,
		target:     target,
		ttl:        cfg.TTL,
		log:        log.WithField("step", "subdomain"),
	}
}

func (a *CloudflareAllocator) Allocate(ctx context.Context, profile models.AgentProfile) (string, error) {
	subdomain, err := Subdomain(profile.AgentName)
	if err != nil {
		return "", fmt.Errorf("allocate subdomain: %w", err)
	}

	zone, params := a.Record(subdomain)
	a.log.WithFields(logrus.Fields{
		"zone":    zone.Identifier,
		"type":    params.Type,
		"name":    params.Name,
		"content": params.Content,
		"ttl":     params.TTL,
	}).Debug("dns record prepared, not submitted")

	return fmt.Sprintf("%s.%s", subdomain, a.rootDomain), nil
}

// Record builds the CNAME that would point the subdomain at the site builder,
// addressed to the configured zone.
func (a *CloudflareAllocator) Record(subdomain string) (*cloudflare.ResourceContainer, cloudflare.CreateDNSRecordParams) {
	return cloudflare.ZoneIdentifier(a.zoneID), cloudflare.CreateDNSRecordParams{
		Type:    "CNAME",
		Name:    subdomain,
		Content: a.target,
		TTL:     a.ttl,
	}
}
