package extratls

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yndnr/extratls-go/internal/host"
	"github.com/yndnr/extratls-go/internal/infra/confloader"
)

// Config is the extra_tls_certificates section.
type Config struct {
	CA     []string       `koanf:"ca" validate:"dive,file"`
	Client []ClientConfig `koanf:"client" validate:"dive"`
}

// ClientConfig is one client certificate entry.
type ClientConfig struct {
	Cert string `koanf:"cert" validate:"required,file"`
	// Key is read from Cert when empty.
	Key string `koanf:"key" validate:"omitempty,file"`
	// Password is nil when the key is not encrypted.
	Password *string `koanf:"password"`
}

// Encrypted reports whether a password was configured for the key.
func (c ClientConfig) Encrypted() bool {
	return c.Password != nil
}

func (c ClientConfig) passwordBytes() []byte {
	if c.Password == nil {
		return nil
	}
	return []byte(*c.Password)
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

var tagMessages = map[string]string{
	"required": "is required",
	"file":     "is not an existing file",
}

func messageForTag(tag string) string {
	if msg, ok := tagMessages[tag]; ok {
		return msg
	}
	return "is invalid"
}

// Decode reads the section from the loaded configuration. A missing
// section decodes to an empty Config.
func Decode(l *confloader.Loader) (*Config, error) {
	cfg := &Config{}
	if !l.Exists(Domain) {
		return cfg, nil
	}

	if err := l.UnmarshalStrict(Domain, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", host.ErrInvalidConfig, Domain, err)
	}
	return cfg, nil
}

// Validate checks that every configured path names an existing regular
// file. All problems are reported together.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", host.ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if v, ok := fe.Value().(string); ok && v != "" {
			msgs = append(msgs, fmt.Sprintf("%s %s (%s)", field, messageForTag(fe.Tag()), v))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s %s", field, messageForTag(fe.Tag())))
		}
	}
	return fmt.Errorf("%w: %s", host.ErrInvalidConfig, strings.Join(msgs, "; "))
}
