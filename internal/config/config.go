package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  string
	Env   string
	LLM   LLMConfig
	Store StoreConfig
	Image ImageStoreConfig
}

type LLMConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

type StoreConfig struct {
	PostgresDSN string
	FilePath    string
}

type ImageStoreConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port: *port,
		Env:  env,
		LLM: LLMConfig{
			APIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			TextModel:  firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.0-flash"),
			ImageModel: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL")), "gemini-2.0-flash-preview-image-generation"),
		},
		Store: StoreConfig{
			PostgresDSN: strings.TrimSpace(os.Getenv("STORE_PG_DSN")),
			FilePath:    firstNonEmpty(strings.TrimSpace(os.Getenv("STORE_FILE_PATH")), "launchpad_store.json"),
		},
		Image: loadImageStoreConfig(env),
	}, nil
}

func loadImageStoreConfig(env string) ImageStoreConfig {
	endpoint := resolveImageEndpoint(env)
	return ImageStoreConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_BUCKET")), "launchpad-images"),
		UseSSL:    resolveImageUseSSL(env),
	}
}

func resolveImageEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("IMAGE_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("IMAGE_S3_ENDPOINT"))
}

func resolveImageUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("IMAGE_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
