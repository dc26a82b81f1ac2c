package archive

import (
	"github.com/arloliu/pesbin/internal/logger"
	"github.com/arloliu/pesbin/internal/options"
	"github.com/arloliu/pesbin/mapper"
)

// DocumentConfig holds the settings applied when a document is loaded.
type DocumentConfig struct {
	log          logger.Logger
	registry     *mapper.Registry
	oneByteBools []string
	sentinel     []byte
}

func newDocumentConfig() *DocumentConfig {
	return &DocumentConfig{log: logger.Nop()}
}

// Option configures a Document at load time.
type Option = options.Option[*DocumentConfig]

// WithLogger sets the logger. Documents are silent by default.
func WithLogger(l logger.Logger) Option {
	return options.NoError(func(c *DocumentConfig) {
		if l != nil {
			c.log = l
		}
	})
}

// WithRegistry sets the mapper registry used to decode sections. Without a
// registry every section opens as a read-only placeholder.
func WithRegistry(r *mapper.Registry) Option {
	return options.NoError(func(c *DocumentConfig) {
		c.registry = r
	})
}

// WithLayoutSet compiles a YAML layout set into the registry and merges its
// one-byte booleans and null sentinel into the document's descriptor.
func WithLayoutSet(ls *mapper.LayoutSet) Option {
	return options.New(func(c *DocumentConfig) error {
		reg, err := ls.Registry()
		if err != nil {
			return err
		}
		desc, err := ls.Descriptor()
		if err != nil {
			return err
		}

		c.registry = reg
		c.oneByteBools = append(c.oneByteBools, desc.OneByteBooleanNames()...)
		if ls.NullSentinel != "" {
			c.sentinel = desc.Sentinel()
		}

		return nil
	})
}

// WithOneByteBooleans adds boolean field names that are stored in one byte.
func WithOneByteBooleans(names ...string) Option {
	return options.NoError(func(c *DocumentConfig) {
		c.oneByteBools = append(c.oneByteBools, names...)
	})
}
