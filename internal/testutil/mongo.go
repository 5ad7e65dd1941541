// Package testutil provisions test dependencies: a throwaway MongoDB
// container for integration tests and an in-memory store fake for handler
// tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mongoRepository    = "mongo"
	mongoTag           = "7.0"
	mongoExpireSeconds = 120

	containerNameCharacters   = "abcdefghijklmnopqrstuvwxyz"
	containerNameNanoIDLength = 16
)

// StartMongo runs a disposable MongoDB container and returns its URI.
// Tests calling it are skipped when no Docker daemon is reachable.
func StartMongo(t *testing.T) string {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("skipping, could not construct docker pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("skipping, could not connect to docker: %v", err)
	}

	generateID, err := nanoid.CustomASCII(containerNameCharacters, containerNameNanoIDLength)
	if err != nil {
		t.Fatalf("failed to generate container name: %v", err)
	}

	resource, err := pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository: mongoRepository,
			Tag:        mongoTag,
			Name:       fmt.Sprintf("chatdrop-mongo_%s", generateID()),
		},
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		t.Fatalf("failed to run mongo container: %v", err)
	}
	t.Cleanup(func() {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Logf("failed to purge mongo container: %v", purgeErr)
		}
	})

	// Hard stop in case the test process dies before cleanup runs.
	if err := resource.Expire(mongoExpireSeconds); err != nil {
		t.Fatalf("failed to set container expiry: %v", err)
	}

	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))

	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, connectErr := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if connectErr != nil {
			return connectErr
		}
		defer func() { _ = client.Disconnect(ctx) }()

		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return uri
}
