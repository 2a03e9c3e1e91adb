package config

import (
	"os"
	"strconv"
	"strings"

	"sealed_rps/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string // пусто = без Postgres
	LevelDBPath string // встроенное хранилище, если нет DATABASE_URL
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventsChannel string

	// Ledger instance and proof signers
	Contract     common.Address
	InputSigner  common.Address
	KMSSigners   []common.Address
	KMSThreshold int
	Admins       []common.Address

	// Limits
	APIRateLimit   int
	APIRateWindow  int
	GameRateLimit  int
	GameRateWindow int

	AllowedOrigin string
	LogLevel      string
	LogJSON       bool
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	contract, ok := parseAddress(os.Getenv("CONTRACT_ADDRESS"))
	if !ok {
		logger.Fatal("CONTRACT_ADDRESS is not a valid address")
	}

	inputSigner, ok := parseAddress(os.Getenv("INPUT_SIGNER"))
	if !ok {
		logger.Fatal("INPUT_SIGNER is not a valid address")
	}

	kms := parseAddressList(os.Getenv("KMS_SIGNERS"))
	if len(kms) == 0 {
		logger.Fatal("KMS_SIGNERS is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	channel := os.Getenv("EVENTS_CHANNEL")
	if channel == "" {
		channel = "sealed_rps:events"
	}

	return &Config{
		AppPort:        port,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		LevelDBPath:    os.Getenv("LEVELDB_PATH"),
		JWTSecret:      jwtSecret,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        intEnv("REDIS_DB", 0),
		EventsChannel:  channel,
		Contract:       contract,
		InputSigner:    inputSigner,
		KMSSigners:     kms,
		KMSThreshold:   intEnv("KMS_THRESHOLD", 1),
		Admins:         parseAddressList(os.Getenv("ADMIN_ADDRESSES")),
		APIRateLimit:   intEnv("API_RATE_LIMIT", 120),
		APIRateWindow:  intEnv("API_RATE_WINDOW_SECONDS", 60),
		GameRateLimit:  intEnv("GAME_RATE_LIMIT", 60),
		GameRateWindow: intEnv("GAME_RATE_WINDOW", 60),
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		LogJSON:        os.Getenv("LOG_JSON") == "true",
	}
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func parseAddress(s string) (common.Address, bool) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

// адреса через запятую, невалидные пропускаются
func parseAddressList(s string) []common.Address {
	var out []common.Address
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		if addr, ok := parseAddress(part); ok {
			out = append(out, addr)
		}
	}
	return out
}
