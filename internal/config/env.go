package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the store passphrase may be prompted at runtime - use GetStorePassphraseBytes()
type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	SolanaRPCURL        string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	SolanaCommitment    string        `envconfig:"SOLANA_COMMITMENT" default:"confirmed"`
	ConfirmPollInterval time.Duration `envconfig:"CONFIRM_POLL_INTERVAL" default:"500ms"`
	ConfirmTimeout      time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"60s"`

	// RetryMaxAttempts is the total number of send attempts, first one included.
	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryDelay       time.Duration `envconfig:"RETRY_DELAY" default:"2s"`
	RetryBackoff     string        `envconfig:"RETRY_BACKOFF" default:"fixed"`

	Turnkey

	JupiterAPIURL   string `envconfig:"JUPITER_API_URL" default:"https://public.jupiterapi.com"`
	CoinGeckoAPIURL string `envconfig:"COINGECKO_API_URL" default:"https://api.coingecko.com/api/v3"`
	BotBackendURL   string `envconfig:"BOT_BACKEND_URL" required:"true"`

	EventFeedURL          string        `envconfig:"EVENT_FEED_URL"`
	FeedReconnectDelay    time.Duration `envconfig:"FEED_RECONNECT_DELAY" default:"1s"`
	FeedMaxReconnectDelay time.Duration `envconfig:"FEED_MAX_RECONNECT_DELAY" default:"30s"`

	RedisAddr       string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
	StorePassphrase string `envconfig:"STORE_PASSPHRASE"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// Turnkey is the parent organization credential of the custodial signer.
type Turnkey struct {
	TurnkeyAPIURL        string `envconfig:"TURNKEY_API_URL" default:"https://api.turnkey.com"`
	TurnkeyOrgID         string `envconfig:"TURNKEY_ORGANIZATION_ID"`
	TurnkeyAPIPublicKey  string `envconfig:"TURNKEY_API_PUBLIC_KEY"`
	TurnkeyAPIPrivateKey string `envconfig:"TURNKEY_API_PRIVATE_KEY"`
}

// TurnkeyTool is the configuration of the key tool. It leaves out everything
// the relay needs besides the signer.
type TurnkeyTool struct {
	Turnkey
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
}

// LoadTurnkeyTool loads .env (if present) and the signer settings, requiring
// the parent organization credential.
func LoadTurnkeyTool() (*TurnkeyTool, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	c := &TurnkeyTool{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if c.TurnkeyOrgID == "" || c.TurnkeyAPIPublicKey == "" || c.TurnkeyAPIPrivateKey == "" {
		return nil, errors.New("TURNKEY_ORGANIZATION_ID, TURNKEY_API_PUBLIC_KEY and TURNKEY_API_PRIVATE_KEY must be set")
	}
	return c, nil
}

// cfg is the global configuration instance
var cfg *Config

// Init loads .env (if present) and then configuration from environment variables.
func Init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	cfg = c
	if c.StorePassphrase != "" {
		passphraseBytes = []byte(c.StorePassphrase)
	}
	return nil
}

// Set replaces the global configuration instance.
func Set(c *Config) {
	cfg = c
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetEventFeedURL returns the bot backend WebSocket feed URL, empty if disabled
func GetEventFeedURL() string {
	return Get().EventFeedURL
}

var passphraseBytes []byte

// PromptForPassphrase prompts the user for the store passphrase in the terminal
// unless STORE_PASSPHRASE was already provided.
// The passphrase is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassphrase() error {
	if len(passphraseBytes) > 0 {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: set STORE_PASSPHRASE or run the app interactively")
	}
	fmt.Fprint(os.Stderr, "Enter store passphrase: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("passphrase cannot be empty")
	}

	passphraseBytes = make([]byte, len(raw))
	copy(passphraseBytes, raw)
	clear(raw)
	return nil
}

// GetStorePassphraseBytes returns a copy of the passphrase stored in memory.
// Returns an error if the passphrase was not set.
// Caller must zero the returned slice after use for security.
func GetStorePassphraseBytes() ([]byte, error) {
	if len(passphraseBytes) == 0 {
		return nil, errors.New("passphrase not set: call PromptForPassphrase at startup")
	}
	out := make([]byte, len(passphraseBytes))
	copy(out, passphraseBytes)
	return out, nil
}
