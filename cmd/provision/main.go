// Command provision sets up the provider-side resources the relay needs:
// sending domains, the inbound domain with its relay webhook, and the
// event webhook pointing back at the running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/sparkpost"
)

func main() {
	var (
		configPath    = flag.String("config", "config/config.yaml", "path to the config file")
		sendingDomain = flag.String("sending-domain", "", "sending domain to create and verify")
		inboundDomain = flag.String("inbound-domain", "", "inbound domain to accept mail on")
		target        = flag.String("target", "", "externally reachable webhook URL (defaults to webhook.base_url + /webhook/incoming)")
		eventsHook    = flag.Bool("events-webhook", false, "register an event webhook for the target")
		reset         = flag.Bool("reset", false, "delete existing webhooks for the domain/target before provisioning")
	)
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Provisioning touches account-level resources, so always use the
	// master key when one is configured.
	client, err := sparkpost.NewClient(cfg.SparkPost.MasterConfig())
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if *target == "" && cfg.Webhook.BaseURL != "" {
		*target = strings.TrimRight(cfg.Webhook.BaseURL, "/") + "/webhook/incoming"
	}

	if *reset {
		if err := clearExisting(ctx, client, *inboundDomain, *target); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
	}

	if *sendingDomain != "" {
		if err := ensureSendingDomain(ctx, client, *sendingDomain); err != nil {
			log.Fatalf("Sending domain setup failed: %v", err)
		}
	}
	if *inboundDomain != "" {
		if *target == "" {
			log.Fatal("An inbound domain needs a -target (or webhook.base_url in config)")
		}
		if err := ensureInboundRelay(ctx, client, *inboundDomain, *target); err != nil {
			log.Fatalf("Inbound relay setup failed: %v", err)
		}
	}
	if *eventsHook {
		if *target == "" {
			log.Fatal("An events webhook needs a -target (or webhook.base_url in config)")
		}
		if err := ensureEventWebhook(ctx, client, cfg, *target); err != nil {
			log.Fatalf("Event webhook setup failed: %v", err)
		}
	}
	if *sendingDomain == "" && *inboundDomain == "" && !*eventsHook {
		flag.Usage()
	}
}

// clearExisting removes relay webhooks for the inbound domain and event
// webhooks for the target, so a fresh run rebuilds them from scratch.
func clearExisting(ctx context.Context, client *sparkpost.Client, domain, target string) error {
	if domain != "" {
		hooks, err := client.ListRelayWebhooks(ctx)
		if err != nil {
			return fmt.Errorf("listing relay webhooks: %w", err)
		}
		for _, hook := range hooks {
			if hook.Match.Domain == domain {
				log.Printf("Deleting relay webhook %s (%s)", hook.ID, hook.Name)
				if err := client.DeleteRelayWebhook(ctx, hook.ID); err != nil {
					return fmt.Errorf("deleting relay webhook %s: %w", hook.ID, err)
				}
			}
		}
	}
	if target != "" {
		hooks, err := client.ListWebhooks(ctx, "")
		if err != nil {
			return fmt.Errorf("listing webhooks: %w", err)
		}
		for _, hook := range hooks {
			if hook.Target == target {
				log.Printf("Deleting event webhook %s (%s)", hook.ID, hook.Name)
				if err := client.DeleteWebhook(ctx, hook.ID); err != nil {
					return fmt.Errorf("deleting webhook %s: %w", hook.ID, err)
				}
			}
		}
	}
	return nil
}

func ensureSendingDomain(ctx context.Context, client *sparkpost.Client, domain string) error {
	existing, err := client.GetSendingDomain(ctx, domain)
	if err != nil {
		log.Printf("Creating sending domain %s", domain)
		if _, err := client.CreateSimpleSendingDomain(ctx, domain); err != nil {
			return fmt.Errorf("creating sending domain: %w", err)
		}
	} else if existing.Ready() {
		log.Printf("Sending domain %s is already verified", domain)
		return nil
	}

	result, err := client.VerifySendingDomain(ctx, domain)
	if err != nil {
		return fmt.Errorf("verifying sending domain: %w", err)
	}
	log.Printf("Verification for %s: dkim=%s spf=%s", domain, result.DKIMStatus, result.SPFStatus)
	return nil
}

func ensureInboundRelay(ctx context.Context, client *sparkpost.Client, domain, target string) error {
	if _, err := client.GetInboundDomain(ctx, domain); err != nil {
		log.Printf("Creating inbound domain %s", domain)
		if err := client.CreateInboundDomain(ctx, domain); err != nil {
			return fmt.Errorf("creating inbound domain: %w", err)
		}
	} else {
		log.Printf("Inbound domain %s already exists", domain)
	}

	hooks, err := client.ListRelayWebhooks(ctx)
	if err != nil {
		return fmt.Errorf("listing relay webhooks: %w", err)
	}
	for _, hook := range hooks {
		if hook.Match.Domain == domain {
			if hook.Target == target {
				log.Printf("Relay webhook for %s already points at %s", domain, target)
				return nil
			}
			log.Printf("Updating relay webhook %s target to %s", hook.ID, target)
			return client.UpdateRelayWebhook(ctx, hook.ID, sparkpost.Params{"target": target})
		}
	}

	log.Printf("Creating relay webhook for %s -> %s", domain, target)
	_, err = client.CreateRelayWebhook(ctx, sparkpost.RelayWebhook{
		Name:   "Inbound relay for " + domain,
		Target: target,
		Match:  sparkpost.RelayWebhookMatch{Protocol: "SMTP", Domain: domain},
	})
	if err != nil {
		return fmt.Errorf("creating relay webhook: %w", err)
	}
	return nil
}

func ensureEventWebhook(ctx context.Context, client *sparkpost.Client, cfg *config.Config, target string) error {
	hooks, err := client.ListWebhooks(ctx, "")
	if err != nil {
		return fmt.Errorf("listing webhooks: %w", err)
	}
	for _, hook := range hooks {
		if hook.Target == target {
			log.Printf("Event webhook already registered for %s", target)
			return nil
		}
	}

	var creds *sparkpost.WebhookBasicAuth
	if cfg.Webhook.Username != "" {
		creds = &sparkpost.WebhookBasicAuth{
			Username: cfg.Webhook.Username,
			Password: cfg.Webhook.Password,
		}
	}
	log.Printf("Creating event webhook -> %s", target)
	_, err = client.CreateSimpleWebhook(ctx, "sparkpost-relay events", target, nil, creds != nil, creds)
	if err != nil {
		return fmt.Errorf("creating event webhook: %w", err)
	}
	return nil
}
