package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "firestore", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: BackendSQLite, DataDir: ""},
			wantErr: nil,
		},
		{
			name: "unknown sync strategy",
			config: Config{Backend: BackendSQLite, SQLiteConfig: &SQLiteConfig{
				SyncStrategy: "eventually",
			}},
			wantErr: ErrSyncStrategyUnknown,
		},
		{
			name: "negative batch size",
			config: Config{Backend: BackendSQLite, SQLiteConfig: &SQLiteConfig{
				SyncStrategy: SyncBatch, BatchSize: -1,
			}},
			wantErr: ErrBatchSizeInvalid,
		},
		{
			name: "negative batch interval",
			config: Config{Backend: BackendSQLite, SQLiteConfig: &SQLiteConfig{
				SyncStrategy: SyncBatch, BatchInterval: -5,
			}},
			wantErr: ErrBatchIntervalInvalid,
		},
		{
			name: "batch strategy with explicit settings",
			config: Config{Backend: BackendSQLite, SQLiteConfig: &SQLiteConfig{
				SyncStrategy: SyncBatch, BatchSize: 3, BatchInterval: 1,
			}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSQLiteConfigDefaults(t *testing.T) {
	var nilCfg *SQLiteConfig
	if got := nilCfg.GetSyncStrategy(); got != SyncImmediate {
		t.Errorf("nil GetSyncStrategy = %q, want %q", got, SyncImmediate)
	}
	if got := nilCfg.GetBatchSize(); got != DefaultBatchSize {
		t.Errorf("nil GetBatchSize = %d, want %d", got, DefaultBatchSize)
	}
	if got := nilCfg.GetBatchInterval(); got != DefaultBatchInterval {
		t.Errorf("nil GetBatchInterval = %d, want %d", got, DefaultBatchInterval)
	}

	cfg := &SQLiteConfig{SyncStrategy: SyncOnClose, BatchSize: 7, BatchInterval: 2}
	if got := cfg.GetSyncStrategy(); got != SyncOnClose {
		t.Errorf("GetSyncStrategy = %q, want %q", got, SyncOnClose)
	}
	if got := cfg.GetBatchSize(); got != 7 {
		t.Errorf("GetBatchSize = %d, want 7", got)
	}
	if got := cfg.GetBatchInterval(); got != 2 {
		t.Errorf("GetBatchInterval = %d, want 2", got)
	}
}
