package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa a configuração da aplicação (lida via Viper de env e,
// opcionalmente, de arquivo .env).
type Config struct {
	App    AppConfig
	DB     DBConfig
	HTTP   HTTPConfig
	Stock  StockConfig
	Notify NotifyConfig
}

// AppConfig configuração geral da aplicação.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuração do PostgreSQL.
// Se DatabaseURL não estiver vazio, é usado como connection string completo.
type DBConfig struct {
	DatabaseURL   string
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

// ConnectionString devolve o DSN: DATABASE_URL se definido, senão o montado.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN monta o connection string com URL encoding para caracteres especiais.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// HTTPConfig configuração do servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devolve o endereço de escuta (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StockConfig parâmetros do motor de consistência de estoque.
type StockConfig struct {
	MaxRecomputeRetries uint64 // tentativas extras após falha de serialização
}

// NotifyConfig parâmetros do despacho de notificações.
type NotifyConfig struct {
	DispatchTimeout time.Duration // o despacho nunca segura o caminho de escrita
	BufferSize      int           // tamanho do buffer por assinante do hub
}

// Load lê a configuração de variáveis de ambiente (e opcionalmente de .env).
// As env vars têm prioridade: APP_ENV, DB_HOST, HTTP_PORT, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // arquivo é opcional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "almoxarifado-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:   getString(v, "DATABASE_URL", ""),
			Host:          getString(v, "DB_HOST", "localhost"),
			Port:          getInt(v, "DB_PORT", 5432),
			User:          getString(v, "DB_USER", "postgres"),
			Password:      getString(v, "DB_PASSWORD", ""),
			DBName:        getString(v, "DB_NAME", "almoxarifado"),
			SSLMode:       getString(v, "DB_SSLMODE", "disable"),
			MigrationsDir: getString(v, "DB_MIGRATIONS_DIR", "migrations"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Stock: StockConfig{
			MaxRecomputeRetries: uint64(getInt(v, "STOCK_MAX_RECOMPUTE_RETRIES", 3)),
		},
		Notify: NotifyConfig{
			DispatchTimeout: time.Duration(getInt(v, "NOTIFY_DISPATCH_TIMEOUT_MS", 500)) * time.Millisecond,
			BufferSize:      getInt(v, "NOTIFY_BUFFER_SIZE", 16),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return def
}
