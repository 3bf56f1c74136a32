package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
	"whisprdraw-backend/internal/config"
)

// ClientFactory builds a Supabase client per caller. The caller's bearer
// token is forwarded so that row-level security applies, unless the service
// runs with admin access, in which case the configured key is used as is.
type ClientFactory struct {
	url         string
	key         string
	adminAccess bool
}

func NewClientFactory(cfg *config.Config) *ClientFactory {
	return &ClientFactory{
		url:         cfg.SupabaseURL,
		key:         cfg.SupabaseKey,
		adminAccess: cfg.AdminAccess,
	}
}

// ForToken returns a client acting on behalf of token. An empty token falls
// back to the configured key.
func (f *ClientFactory) ForToken(token string) (*supabase.Client, error) {
	var opts *supabase.ClientOptions
	if token != "" && !f.adminAccess {
		opts = &supabase.ClientOptions{
			Headers: map[string]string{"Authorization": "Bearer " + token},
		}
	}

	client, err := supabase.NewClient(f.url, f.key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

func (f *ClientFactory) URL() string {
	return f.url
}
