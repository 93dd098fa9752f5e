package kstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"providerhub-backend/internal/ingest"
	"providerhub-backend/internal/logging"
	"providerhub-backend/internal/model"
	"providerhub-backend/internal/moderation"
	"providerhub-backend/internal/store"
)

// Reader creates a consumer-group reader for a pipeline topic.
func Reader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,
		MaxBytes:       104857600, // bulk imports can be large
		CommitInterval: time.Second,
	})
}

// IngestDeps wires the gate consumer. Moderation may be nil, in which
// case no providers are treated as suspended.
type IngestDeps struct {
	Broker        string
	Store         *store.Store
	RejectionsDir string
	Moderation    *moderation.Service
	Log           *logging.Logger
}

// ConsumeIngest runs the gate consumer: it reads bulk imports from
// listings.ingest, validates them, records rejections, commits accepted
// rows to the catalog and emits ListingAccepted events. Malformed
// messages are skipped; only the reader failing ends the loop.
func ConsumeIngest(ctx context.Context, deps IngestDeps) error {
	reader := Reader(deps.Broker, TopicListingsIngest, "listing-gate-group")
	defer reader.Close()

	log := deps.Log.With("component", "gate-consumer")
	log.Info("consuming", "topic", TopicListingsIngest)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var imp model.CatalogImport
		if err := json.Unmarshal(msg.Value, &imp); err != nil {
			log.Warn("unmarshal import", "err", err)
			continue
		}

		if deps.Moderation != nil {
			imp.Providers = dropSuspended(ctx, deps.Moderation, imp.Providers, log)
		}

		accepted, rejections := ingest.ProcessImport(ctx, &imp)

		for _, rej := range rejections {
			if err := ingest.WriteRejection(deps.RejectionsDir, imp.Source, rej); err != nil {
				log.Warn("write rejection", "err", err)
			}
		}

		if len(accepted) == 0 {
			continue
		}

		events, err := ingest.Accept(deps.Store, accepted)
		if err != nil {
			log.Error("commit accepted providers", "err", err)
			continue
		}

		for _, evt := range events {
			if err := PublishListingAccepted(ctx, deps.Broker, evt); err != nil {
				log.Warn("publish listing accepted", "listing_id", evt.ListingID, "err", err)
			}
		}
	}
}

func dropSuspended(ctx context.Context, mod *moderation.Service, providers []model.ImportedProvider, log *logging.Logger) []model.ImportedProvider {
	kept := providers[:0]
	for _, p := range providers {
		status, err := mod.Check(ctx, p.Profile.ID)
		if err != nil {
			log.Warn("moderation check", "provider_id", p.Profile.ID, "err", err)
		}
		if status == moderation.StatusSuspended {
			log.Info("suspended provider skipped", "provider_id", p.Profile.ID)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
