package kstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"providerhub-backend/internal/model"
)

// Topics carried by the listing pipeline.
const (
	TopicListingsIngest   = "listings.ingest"
	TopicListingsAccepted = "listings.accepted"
)

// kafkaWriter constructs an async producer. Large batch ceiling so bulk
// catalog imports fit in one message.
func kafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchBytes:   104857600,
	}
}

// PublishCatalogImport replays a bulk import envelope onto listings.ingest
// so the gate consumer processes it off the request path.
func PublishCatalogImport(ctx context.Context, broker string, imp *model.CatalogImport) error {
	w := kafkaWriter(broker, TopicListingsIngest)
	defer w.Close()

	data, err := json.Marshal(imp)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(imp.Source),
		Value: data,
		Time:  time.Now(),
	}
	return w.WriteMessages(ctx, msg)
}

// PublishListingAccepted publishes one accepted-listing event. The key
// groups by provider and locality so per-listing updates stay ordered.
func PublishListingAccepted(ctx context.Context, broker string, evt model.ListingAccepted) error {
	w := kafkaWriter(broker, TopicListingsAccepted)
	defer w.Close()

	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.ProviderID + ":" + evt.Country + ":" + evt.CategoryID),
		Value: data,
		Time:  time.Now(),
	}
	return w.WriteMessages(ctx, msg)
}
