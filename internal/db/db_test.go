package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reelspay/reelspay-backend/internal/config"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "host and port",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "10.0.0.1", DBPort: "3306", DBName: "reels"},
			want: "u:p@tcp(10.0.0.1:3306)/reels?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "explicit tcp",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "tcp(db:3307)", DBName: "reels"},
			want: "u:p@tcp(db:3307)/reels?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "socket path",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "/var/run/mysqld.sock", DBName: "reels"},
			want: "u:p@unix(/var/run/mysqld.sock)/reels?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "cloud sql",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "ignored", InstanceConnectionName: "proj:asia:db", DBName: "reels"},
			want: "u:p@unix(/cloudsql/proj:asia:db)/reels?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "bounded connection",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "reels", DBTimeout: 10 * time.Second},
			want: "u:p@tcp(db:3306)/reels?charset=utf8mb4&parseTime=True&loc=UTC&timeout=10s&readTimeout=10s&writeTimeout=10s",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildDSN(&tt.cfg))
		})
	}
}

func TestConnectSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "reels.db")}
	conn, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))

	for _, table := range []string{"profiles", "videos", "video_views", "coin_transactions", "payout_requests", "user_roles", "reward_claims"} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}
	require.NoError(t, conn.Create(&model.Profile{UserUID: "uid-1", DisplayName: "Asha"}).Error)
}
