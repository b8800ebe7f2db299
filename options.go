package carryover

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/scsphylo/carryover/internal/estimates"
	"github.com/scsphylo/carryover/internal/tagdict"
)

type stringOption struct {
	value string
	set   bool
}

func (o stringOption) resolved(def string) string {
	if !o.set {
		return def
	}
	return o.value
}

type dictionaryOption struct {
	value tagdict.Dictionary
	set   bool
}

// Options configures a run. The zero value uses the built-in tag dictionary,
// the ".vcf" results key and no logging.
type Options struct {
	dictionary dictionaryOption
	resultsKey stringOption
	logger     *zap.Logger
}

type resolvedOptions struct {
	dictionary tagdict.Dictionary
	resultsKey string
	logger     *zap.Logger
}

// NewOptions returns a default, valid options value.
func NewOptions() Options {
	return Options{}
}

// WithDictionary replaces the built-in tag dictionary.
func (o Options) WithDictionary(d tagdict.Dictionary) Options {
	o.dictionary = dictionaryOption{value: d, set: true}
	return o
}

// WithResultsKey sets the substring that selects the results line naming the
// estimate type.
func (o Options) WithResultsKey(key string) Options {
	o.resultsKey = stringOption{value: key, set: true}
	return o
}

// WithLogger sets the logger (nil disables logging).
func (o Options) WithLogger(l *zap.Logger) Options {
	o.logger = l
	return o
}

// Validate validates option values.
func (o Options) Validate() error {
	_, err := o.withDefaults()
	return err
}

func (o Options) withDefaults() (resolvedOptions, error) {
	r := resolvedOptions{
		dictionary: tagdict.Default(),
		resultsKey: o.resultsKey.resolved(estimates.DefaultResultsKey),
		logger:     o.logger,
	}
	if o.dictionary.set {
		r.dictionary = o.dictionary.value
	}
	if r.resultsKey == "" {
		return resolvedOptions{}, fmt.Errorf("results key must not be empty")
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r, nil
}
