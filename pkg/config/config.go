package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig detém a configuração da aplicação.
type AppConfig struct {
	Port        string
	Environment string // "development", "staging", "production"
	LogLevel    string
	LogFile     string // vazio = somente stdout
	AppVersion  string

	// SecretKey assina o cookie de sessão, os tokens de reset e o cookie de flash/CSRF.
	SecretKey string
	BaseURL   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	BcryptCost      int
	SessionTTL      time.Duration
	RememberMeTTL   time.Duration
	ResetTokenTTL   time.Duration
	CookieSecure    bool
	CSRFEnabled     bool
	MailSendTimeout time.Duration
	MaxUploadBytes  int64

	MailProvider string // "log", "smtp", "ses"
	MailSender   string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	AWSRegion    string

	FileStorageProvider string // "local", "s3", "gcs"
	UploadDir           string
	AWSS3Bucket         string
	GCSBucketName       string
	GCSCredentialsFile  string

	FeatureToggles map[string]bool
}

var Cfg AppConfig

// LoadConfig carrega a configuração da aplicação de variáveis de ambiente.
func LoadConfig() {
	// Carregar .env para desenvolvimento local, ignorar erro se não existir (para produção)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("Aviso: erro ao carregar arquivo .env:", err)
	}

	Cfg.Port = getEnv("PORT", "8080")
	Cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	Cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	Cfg.LogFile = getEnv("LOG_FILE", "")
	Cfg.AppVersion = getEnv("APP_VERSION", "dev")

	Cfg.SecretKey = getEnv("SECRET_KEY", "dev_secret_key_please_change_me_32_chars")
	Cfg.BaseURL = strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:8080"), "/")

	Cfg.DBHost = getEnv("DB_HOST", "localhost")
	Cfg.DBPort = getEnv("DB_PORT", "5432")
	Cfg.DBUser = getEnv("DB_USER", "birthdaybook")
	Cfg.DBPassword = getEnv("DB_PASSWORD", "birthdaybook")
	Cfg.DBName = getEnv("DB_NAME", "birthdaybook")
	Cfg.DBSSLMode = getEnv("DB_SSLMODE", "disable")

	Cfg.BcryptCost = getEnvAsInt("BCRYPT_COST", 12)
	Cfg.SessionTTL = time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour
	Cfg.RememberMeTTL = time.Duration(getEnvAsInt("REMEMBER_ME_DAYS", 30)) * 24 * time.Hour
	Cfg.ResetTokenTTL = time.Duration(getEnvAsInt("RESET_TOKEN_TTL_MINUTES", 30)) * time.Minute
	Cfg.CookieSecure = getEnvAsBool("COOKIE_SECURE", false)
	Cfg.CSRFEnabled = getEnvAsBool("CSRF_ENABLED", true)
	Cfg.MailSendTimeout = time.Duration(getEnvAsInt("MAIL_SEND_TIMEOUT_SECONDS", 10)) * time.Second
	Cfg.MaxUploadBytes = int64(getEnvAsInt("MAX_UPLOAD_KB", 2048)) * 1024

	Cfg.MailProvider = strings.ToLower(getEnv("MAIL_PROVIDER", "log"))
	Cfg.MailSender = getEnv("MAIL_SENDER", "noreply@demo.com")
	Cfg.SMTPHost = getEnv("SMTP_HOST", "")
	Cfg.SMTPPort = getEnvAsInt("SMTP_PORT", 587)
	Cfg.SMTPUser = getEnv("SMTP_USER", "")
	Cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	Cfg.AWSRegion = getEnv("AWS_REGION", "")

	Cfg.FileStorageProvider = strings.ToLower(getEnv("FILE_STORAGE_PROVIDER", "local"))
	Cfg.UploadDir = getEnv("UPLOAD_DIR", "uploads/profile_pics")
	Cfg.AWSS3Bucket = getEnv("AWS_S3_BUCKET", "")
	Cfg.GCSBucketName = getEnv("GCS_BUCKET_NAME", "")
	Cfg.GCSCredentialsFile = getEnv("GCS_CREDENTIALS_FILE", "")

	Cfg.FeatureToggles = loadFeatureToggles(os.Environ())

	if Cfg.Environment == "production" && len(Cfg.SecretKey) < 32 {
		log.Println("Aviso: SECRET_KEY tem menos de 32 caracteres em produção")
	}
	log.Printf("Configuração carregada para o ambiente: %s", Cfg.Environment)
}

// DSN monta a string de conexão do Postgres no formato aceito pelo gorm.
func (c AppConfig) DSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// loadFeatureToggles lê variáveis FEATURE_<NOME>=true|false.
// A chave armazenada é o nome sem o prefixo, em maiúsculas.
func loadFeatureToggles(environ []string) map[string]bool {
	toggles := make(map[string]bool)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "FEATURE_") {
			continue
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Aviso: feature toggle '%s' com valor inválido '%s', ignorado", key, value)
			continue
		}
		toggles[strings.ToUpper(strings.TrimPrefix(key, "FEATURE_"))] = enabled
	}
	return toggles
}

// getEnv retorna o valor de uma variável de ambiente ou um valor default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// getEnvAsBool retorna o valor booleano de uma variável de ambiente ou um valor default.
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Aviso: Variável de ambiente booleana '%s' com valor inválido '%s', usando default: %t. Erro: %v", key, valStr, defaultValue, err)
		return defaultValue
	}
	return valBool
}

// getEnvAsInt retorna o valor inteiro de uma variável de ambiente ou um valor default.
func getEnvAsInt(key string, defaultValue int) int {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	valInt, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Aviso: Variável de ambiente inteira '%s' com valor inválido '%s', usando default: %d. Erro: %v", key, valStr, defaultValue, err)
		return defaultValue
	}
	return valInt
}

func init() {
	LoadConfig() // Carregar config automaticamente na inicialização do pacote
}
