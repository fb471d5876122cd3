package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"task-management/configs"
	"task-management/pkg/database"
)

// Container is a throwaway Docker container started for integration tests.
type Container struct {
	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// Close removes the container.
func (c *Container) Close() error {
	return c.pool.Purge(c.resource)
}

func start(opts *dockertest.RunOptions) (*Container, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connect to docker: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("ping docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute
	resource, err := pool.RunWithOptions(opts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Repository, err)
	}
	// container dibuang otomatis kalau test crash
	_ = resource.Expire(300)
	return &Container{pool: pool, resource: resource}, nil
}

// Postgres starts Postgres and returns a connection to an empty database.
func Postgres(ctx context.Context) (*sql.DB, *Container, error) {
	c, err := start(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=task",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=task_test",
		},
	})
	if err != nil {
		return nil, nil, err
	}
	port, _ := strconv.Atoi(c.resource.GetPort("5432/tcp"))
	cfg := configs.Config{
		DBHost:     "localhost",
		DBPort:     port,
		DBUser:     "task",
		DBPassword: "secret",
	}

	var db *sql.DB
	err = c.pool.Retry(func() error {
		var err error
		db, err = database.ConnectDB(ctx, cfg, "task_test")
		return err
	})
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return db, c, nil
}

// Redis starts Redis and returns a connected client.
func Redis(ctx context.Context) (*redis.Client, *Container, error) {
	c, err := start(&dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"})
	if err != nil {
		return nil, nil, err
	}
	addr := "localhost:" + c.resource.GetPort("6379/tcp")

	var client *redis.Client
	err = c.pool.Retry(func() error {
		var err error
		client, err = database.ConnectRedis(ctx, addr, "", 0)
		return err
	})
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return client, c, nil
}
