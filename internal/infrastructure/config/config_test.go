package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "正常系: 標準設定",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable",
		},
		{
			name: "正常系: 本番設定",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				User:     "produser",
				Password: "securepass123",
				Database: "proddb",
				SSLMode:  "require",
			},
			want: "host=db.example.com port=5433 user=produser password=securepass123 dbname=proddb sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ConnectionString(); got != tt.want {
				t.Errorf("DatabaseConfig.ConnectionString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "正常系: postgresは接続文字列を使う",
			cfg: DatabaseConfig{
				Driver:   DriverPostgres,
				Host:     "localhost",
				Port:     5432,
				User:     "u",
				Password: "p",
				Database: "d",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 user=u password=p dbname=d sslmode=disable",
		},
		{
			name: "正常系: sqliteファイル",
			cfg:  DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/terastore.db"},
			want: "file:/tmp/terastore.db?_foreign_keys=on&_busy_timeout=5000",
		},
		{
			name: "正常系: sqliteのデフォルトはメモリ",
			cfg:  DatabaseConfig{Driver: DriverSQLite},
			want: "file::memory:?_foreign_keys=on&_busy_timeout=5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DatabaseConfig.DSN() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	// Save original working directory
	originalWd, _ := os.Getwd()
	defer os.Chdir(originalWd)

	tests := []struct {
		name    string
		env     string
		wantErr bool
	}{
		{name: "default dev environment", env: ""},
		{name: "explicit dev environment", env: "dev"},
		{name: "prod environment", env: "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			err := InitConfig(tt.env)
			if (err != nil) != tt.wantErr {
				t.Errorf("InitConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if viper.GetString("SERVER_HOST") != "0.0.0.0" {
				t.Errorf("InitConfig() SERVER_HOST = %v, want 0.0.0.0", viper.GetString("SERVER_HOST"))
			}
			if viper.GetInt("SERVER_PORT") != 8080 {
				t.Errorf("InitConfig() SERVER_PORT = %v, want 8080", viper.GetInt("SERVER_PORT"))
			}
			if viper.GetInt("GRPC_PORT") != 50051 {
				t.Errorf("InitConfig() GRPC_PORT = %v, want 50051", viper.GetInt("GRPC_PORT"))
			}
			if viper.GetString("DB_SSLMODE") != "disable" {
				t.Errorf("InitConfig() DB_SSLMODE = %v, want disable", viper.GetString("DB_SSLMODE"))
			}
			if !viper.GetBool("KEY_CACHE_ENABLED") {
				t.Error("InitConfig() KEY_CACHE_ENABLED = false, want true")
			}
		})
	}
	viper.Reset()
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func()
		wantErr     bool
		wantErrMsg  string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "正常系: パスワード付きでpostgres設定を読み込み",
			setupEnv: func() {
				viper.Set("DB_DRIVER", DriverPostgres)
				viper.Set("DB_PASSWORD", "testpassword")
				viper.Set("DB_HOST", "localhost")
				viper.Set("DB_PORT", 15432)
				viper.Set("DB_USER", "terastore")
				viper.Set("DB_NAME", "terastore_dev")
				viper.Set("SERVER_PORT", 8080)
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				if cfg.Database.Driver != DriverPostgres {
					t.Errorf("Load() Database.Driver = %v, want postgres", cfg.Database.Driver)
				}
				if cfg.Database.Password != "testpassword" {
					t.Errorf("Load() Database.Password = %v, want testpassword", cfg.Database.Password)
				}
				if cfg.Database.Port != 15432 {
					t.Errorf("Load() Database.Port = %v, want 15432", cfg.Database.Port)
				}
				if cfg.Server.Port != 8080 {
					t.Errorf("Load() Server.Port = %v, want 8080", cfg.Server.Port)
				}
			},
		},
		{
			name: "異常系: postgresのパスワード未設定",
			setupEnv: func() {
				viper.Set("DB_DRIVER", DriverPostgres)
			},
			wantErr:    true,
			wantErrMsg: "DB_PASSWORD is required (set via environment variable or .env file)",
		},
		{
			name: "正常系: sqliteはパスワード不要",
			setupEnv: func() {
				viper.Set("DB_DRIVER", DriverSQLite)
				viper.Set("DB_PATH", ":memory:")
				viper.Set("LOG_LEVEL", "debug")
				viper.Set("KEY_CACHE_MAX_ENTRIES", 16)
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				if cfg.Database.Path != ":memory:" {
					t.Errorf("Load() Database.Path = %v, want :memory:", cfg.Database.Path)
				}
				if cfg.Log.Level != "debug" {
					t.Errorf("Load() Log.Level = %v, want debug", cfg.Log.Level)
				}
				if cfg.KeyCache.MaxEntries != 16 {
					t.Errorf("Load() KeyCache.MaxEntries = %v, want 16", cfg.KeyCache.MaxEntries)
				}
			},
		},
		{
			name: "異常系: 未対応のドライバ",
			setupEnv: func() {
				viper.Set("DB_DRIVER", "mysql")
			},
			wantErr:    true,
			wantErrMsg: `unsupported DB_DRIVER "mysql" (use postgres or sqlite3)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			tt.setupEnv()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if err.Error() != tt.wantErrMsg {
					t.Errorf("Load() error = %v, want %v", err.Error(), tt.wantErrMsg)
				}
				return
			}

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root, err := findProjectRoot()
	if err != nil {
		t.Errorf("findProjectRoot() error = %v, want nil", err)
		return
	}

	goModPath := root + "/go.mod"
	if _, err := os.Stat(goModPath); os.IsNotExist(err) {
		t.Errorf("findProjectRoot() returned %v, but go.mod does not exist at %v", root, goModPath)
	}
}
