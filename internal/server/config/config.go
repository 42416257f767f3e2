// Package config загружает server.yaml сервера проката и подключает базу.
//
// Порядок загрузки: подстановка ${VAR} из окружения, разбор YAML, дефолты,
// переопределения из окружения, валидация. С невалидным конфигом сервер не стартует.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config - корневая структура всего конфига сервера.
type Config struct {
	Env           string              `yaml:"env"` // dev|stage|prod
	Server        ServerConfig        `yaml:"server"`
	TLS           TLSConfig           `yaml:"tls"`
	DB            DBConfig            `yaml:"db"`
	Migrations    MigrationsConfig    `yaml:"migrations"`
	Auth          AuthConfig          `yaml:"auth"`
	Password      PasswordConfig      `yaml:"password"`
	OTP           OTPConfig           `yaml:"otp"`
	Mail          MailConfig          `yaml:"mail"`
	Redis         RedisConfig         `yaml:"redis"`
	Storage       StorageConfig       `yaml:"storage"`
	CORS          CORSConfig          `yaml:"cors"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig - настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // время на graceful shutdown
	MaxHeaderBytes    int           `yaml:"max_header_bytes"` // лимит размера заголовков
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`   // лимит размера тела запроса
}

// TLSConfig - настройки HTTPS.
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version"` // "1.2"|"1.3" (1.0/1.1 запрещаем т.к. устарели)
}

// DBConfig - настройки подключения к базе данных.
type DBConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// MigrationsConfig - настройки миграций БД.
type MigrationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // file://migrations/postgres
}

// AuthConfig - настройки аутентификации/авторизации.
type AuthConfig struct {
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	AccessTTL time.Duration `yaml:"access_ttl"`
	JWT       JWTConfig     `yaml:"jwt"`
}

// JWTConfig - как подписываем JWT.
type JWTConfig struct {
	Algorithm  string `yaml:"algorithm"`   // сейчас поддерживаем только HS256
	SigningKey string `yaml:"signing_key"` // может содержать ${JWT_SIGNING_KEY}
}

// MinPasswordLength - нижняя граница password.min_length.
const MinPasswordLength = 8

// PasswordConfig - настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Hasher    string       `yaml:"hasher"` // argon2id|bcrypt
	MinLength int          `yaml:"min_length"`
	Argon2    Argon2Config `yaml:"argon2"`
	Bcrypt    BcryptConfig `yaml:"bcrypt"`
}

// Argon2Config - параметры argon2id.
type Argon2Config struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
	KeyLen    uint32 `yaml:"key_len"`
	SaltLen   uint32 `yaml:"salt_len"`
}

// BcryptConfig - параметры bcrypt.
type BcryptConfig struct {
	Cost int `yaml:"cost"`
}

// OTPConfig - одноразовые коды для сброса пароля.
// Срок жизни кода фиксирован (service.OTPTTL) и здесь не настраивается.
type OTPConfig struct {
	ResendInterval time.Duration `yaml:"resend_interval"` // не чаще одного кода на email за интервал
	SweepInterval  time.Duration `yaml:"sweep_interval"`  // как часто удалять просроченные коды
}

// MailConfig - SMTP для отправки кодов.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"` // может содержать ${EMAIL_PASS}
	From     string `yaml:"from"`
}

// RedisConfig - redis для троттлинга запросов кода.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"` // redis://:pass@host:6379/0
	Prefix  string `yaml:"prefix"`
}

// StorageConfig - объектное хранилище для фото машин.
type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config - S3-совместимое хранилище (AWS, MinIO).
type S3Config struct {
	Enabled   bool          `yaml:"enabled"`
	Bucket    string        `yaml:"bucket"`
	Region    string        `yaml:"region"`
	Endpoint  string        `yaml:"endpoint"`
	AccessKey string        `yaml:"access_key"`
	SecretKey string        `yaml:"secret_key"`
	PublicURL string        `yaml:"public_url"` // базовый URL, по которому картинки отдаются наружу
	UploadTTL time.Duration `yaml:"upload_ttl"`
}

// CORSConfig - откуда разрешены запросы браузера.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig - настройки логирования (zap).
type LogConfig struct {
	Level   string `yaml:"level"` // debug|info|warn|error
	Dir     string `yaml:"dir"`
	Console bool   `yaml:"console"`
}

// ObservabilityConfig - метрики.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load читает YAML, подставляет переменные окружения вида ${VAR},
// затем парсит в структуру, проставляет дефолты и валидирует.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
	}

	// Подставляем переменные окружения в текст YAML:
	// signing_key: "${JWT_SIGNING_KEY}" -> signing_key: "реальное_значение"
	raw = []byte(ExpandEnvStrict(string(raw)))

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ExpandEnvStrict заменяет ${VAR} на значение из окружения.
// Если переменная не задана - оставляем ${VAR} как есть,
// а потом Validate() упадёт с понятной ошибкой.
func ExpandEnvStrict(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := envPlaceholder.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		return m
	})
}

// ApplyDefaults - дефолтные значения, если в yaml поле не задано.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.TLS.MinVersion == "" {
		cfg.TLS.MinVersion = "1.2"
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Migrations.Path == "" {
		cfg.Migrations.Path = "file://migrations/postgres"
	}
	if cfg.Auth.JWT.Algorithm == "" {
		cfg.Auth.JWT.Algorithm = "HS256"
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 7 * 24 * time.Hour
	}
	if cfg.Password.Hasher == "" {
		cfg.Password.Hasher = "argon2id"
	}
	if cfg.Password.MinLength == 0 {
		cfg.Password.MinLength = MinPasswordLength
	}
	if cfg.OTP.ResendInterval == 0 {
		cfg.OTP.ResendInterval = time.Minute
	}
	if cfg.OTP.SweepInterval == 0 {
		cfg.OTP.SweepInterval = 10 * time.Minute
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "carrental:otp:"
	}
	if cfg.Storage.S3.UploadTTL == 0 {
		cfg.Storage.S3.UploadTTL = 15 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Observability.Metrics.Path == "" {
		cfg.Observability.Metrics.Path = "/metrics"
	}
}

// Validate проверяет конфиг целиком и возвращает все найденные проблемы сразу
// (errors.Join), чтобы не чинить server.yaml по одной строке за запуск.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateAuth(),
		c.validatePassword(),
		c.validateOTP(),
		c.validateIntegrations(),
	)
}

func (c *Config) validateServer() error {
	var errs []error
	if c.Server.Host == "" {
		errs = append(errs, errors.New("server.host обязателен"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port некорректен: %d", c.Server.Port))
	}

	switch {
	case c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == ""):
		errs = append(errs, errors.New("tls.cert_file и tls.key_file обязательны при tls.enabled=true"))
	case c.TLS.Enabled && c.TLS.MinVersion != "1.2" && c.TLS.MinVersion != "1.3":
		errs = append(errs, fmt.Errorf("tls.min_version=%s не поддерживается; используй 1.2 или 1.3", c.TLS.MinVersion))
	case !c.TLS.Enabled && c.Env == "prod":
		errs = append(errs, errors.New("в prod tls.enabled обязателен"))
	}

	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn обязателен"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateAuth() error {
	if alg := strings.ToUpper(strings.TrimSpace(c.Auth.JWT.Algorithm)); alg != "HS256" {
		return fmt.Errorf("auth.jwt.algorithm должен быть HS256 (сейчас %q)", c.Auth.JWT.Algorithm)
	}

	key := strings.TrimSpace(c.Auth.JWT.SigningKey)
	switch {
	case key == "":
		return errors.New("auth.jwt.signing_key обязателен (через ${JWT_SIGNING_KEY} или прямо строкой)")
	case unexpanded(key):
		return errors.New("auth.jwt.signing_key содержит неподставленную переменную (нужно задать JWT_SIGNING_KEY)")
	case len(key) < 32:
		return fmt.Errorf("auth.jwt.signing_key слишком короткий (%d символов); нужно >= 32", len(key))
	}
	return nil
}

func (c *Config) validatePassword() error {
	var errs []error
	if c.Password.MinLength < MinPasswordLength {
		errs = append(errs, fmt.Errorf("password.min_length=%d; нужно >= %d", c.Password.MinLength, MinPasswordLength))
	}

	switch strings.ToLower(c.Password.Hasher) {
	case "argon2id":
		a := c.Password.Argon2
		if a.Time == 0 || a.MemoryKiB == 0 || a.Threads == 0 {
			errs = append(errs, errors.New("password.argon2 должен быть настроен для argon2id"))
		}
	case "bcrypt":
		if c.Password.Bcrypt.Cost == 0 {
			errs = append(errs, errors.New("password.bcrypt.cost должен быть задан для bcrypt"))
		}
	default:
		errs = append(errs, fmt.Errorf("password.hasher должен быть argon2id|bcrypt (сейчас %q)", c.Password.Hasher))
	}
	return errors.Join(errs...)
}

func (c *Config) validateOTP() error {
	var errs []error
	if c.OTP.ResendInterval < 0 {
		errs = append(errs, fmt.Errorf("otp.resend_interval не может быть отрицательным (%s)", c.OTP.ResendInterval))
	}
	if c.OTP.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("otp.sweep_interval должен быть > 0 (сейчас %s)", c.OTP.SweepInterval))
	}
	return errors.Join(errs...)
}

// validateIntegrations - почта, redis и S3.
func (c *Config) validateIntegrations() error {
	var errs []error
	if c.Mail.Host == "" || c.Mail.From == "" {
		errs = append(errs, errors.New("mail.host и mail.from обязательны (без них код сброса не отправить)"))
	}
	for _, f := range []struct{ name, value string }{
		{"mail.username", c.Mail.Username},
		{"mail.password", c.Mail.Password},
		{"mail.from", c.Mail.From},
	} {
		if unexpanded(f.value) {
			errs = append(errs, fmt.Errorf("%s содержит неподставленную переменную %s", f.name, envPlaceholder.FindString(f.value)))
		}
	}

	if c.Redis.Enabled && c.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url обязателен при redis.enabled=true"))
	}

	if s3 := c.Storage.S3; s3.Enabled {
		if s3.Bucket == "" || s3.Region == "" {
			errs = append(errs, errors.New("storage.s3.bucket и storage.s3.region обязательны при storage.s3.enabled=true"))
		}
		if unexpanded(s3.AccessKey) || unexpanded(s3.SecretKey) {
			errs = append(errs, errors.New("storage.s3 ключи содержат неподставленную переменную (нужно задать S3_ACCESS_KEY и S3_SECRET_KEY)"))
		}
	}
	return errors.Join(errs...)
}

// unexpanded - в значении остался ${VAR}: переменная окружения не задана.
func unexpanded(v string) bool {
	return envPlaceholder.MatchString(v)
}

// ApplyEnvOverrides - даёт возможность переопределять
// некоторые настройки через переменные окружения без ${...} в yaml.
// Например SERVER_PORT=9090 переопределит server.port.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
}
