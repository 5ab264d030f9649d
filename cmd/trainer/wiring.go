package main

import (
	"github.com/phrazzld/scry-trainer/internal/catalog"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/quota"
	"github.com/phrazzld/scry-trainer/internal/reminder"
	"github.com/phrazzld/scry-trainer/internal/trainer"
)

// trainerConfig converts validated session settings. Unknown orders fall
// back to pack order.
func trainerConfig(cfg config.SessionConfig) trainer.Config {
	order, err := trainer.ParseOrder(cfg.Order)
	if err != nil {
		order = trainer.OrderPack
	}
	return trainer.Config{
		Goal: cfg.Goal,
		Shares: quota.Shares{
			Review:  cfg.ShareReview,
			Relearn: cfg.ShareRelearn,
			New:     cfg.ShareNew,
		},
		HighFrequencyFirst: cfg.HighFrequencyFirst,
		SRSEnabled:         cfg.SRSEnabled,
		Order:              order,
	}
}

func catalogFilter(cfg config.CatalogConfig) catalog.Filter {
	return catalog.Filter{
		CEFR:              cfg.CEFR,
		HighFrequencyOnly: cfg.HighFrequencyOnly,
		Cutoff:            catalog.DefaultHighFrequencyCutoff,
		Topics:            catalog.ParseTopics(cfg.Topics),
	}
}

func reminderConfig(cfg config.ReminderConfig) reminder.Config {
	collection := cfg.Collection
	if collection == "" {
		collection = catalog.AllCollections
	}
	return reminder.Config{Interval: cfg.Interval, Collection: catalog.CanonicalName(collection)}
}

// filteredCatalog narrows the cross-pack collection with the configured filter.
// Single packs are served as is.
type filteredCatalog struct {
	*catalog.Loader
	filter catalog.Filter
}

func (c filteredCatalog) Collection(name string) ([]domain.Word, error) {
	words, err := c.Loader.Collection(name)
	if err != nil || name != catalog.AllCollections {
		return words, err
	}
	return c.filter.Apply(words), nil
}
