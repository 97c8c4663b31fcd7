package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"invoicedesk/backend/internal/cache"
	"invoicedesk/backend/internal/config"
	"invoicedesk/backend/internal/store/memory"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := []config.Config{
		{AuthSecret: "short", AdminUser: "owner", AdminPass: "t7!kQ2#vLp9z"},
		{AuthSecret: strongSecret, AdminUser: "", AdminPass: "t7!kQ2#vLp9z"},
		{AuthSecret: strongSecret, AdminUser: "owner", AdminPass: "short"},
		{AuthSecret: strongSecret, AdminUser: "owner", AdminPass: "Password123"},
		{AuthSecret: strongSecret, AdminUser: "owner", AdminPass: "aaaaaaaaaaaa"},
		{AuthSecret: strongSecret, AdminUser: "administrator", AdminPass: "Administrator"},
	}
	for i, cfg := range cases {
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("case %d: expected weak security config to be rejected", i)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, AdminUser: "owner", AdminPass: "t7!kQ2#vLp9z"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestOpenStoreSelectsBackend(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	docs, closers, err := openStore(ctx, config.Config{StoreBackend: config.BackendMemory}, logger)
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := docs.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", docs)
	}
	if len(closers) != 0 {
		t.Fatalf("expected no closers for memory store")
	}

	for _, cfg := range []config.Config{
		{StoreBackend: config.BackendPostgres},
		{StoreBackend: config.BackendFirestore},
		{StoreBackend: "mongodb"},
	} {
		if _, _, err := openStore(ctx, cfg, logger); err == nil {
			t.Fatalf("expected %q without connection settings to fail", cfg.StoreBackend)
		}
	}
}

func TestOpenCacheWithoutRedisUsesMemory(t *testing.T) {
	statsCache, closeFn := openCache(context.Background(), config.Config{}, zap.NewNop())
	if _, ok := statsCache.(*cache.MemoryStatsCache); !ok {
		t.Fatalf("expected in-memory cache, got %T", statsCache)
	}
	if closeFn != nil {
		t.Fatalf("expected no closer for in-memory cache")
	}
}
