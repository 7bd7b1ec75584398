// Package cache implementa el caché compartido de lectura (read-through) sobre
// Redis. Cada espacio de nombres tiene un contador de versión; invalidar es
// incrementar la versión, y las claves viejas expiran por TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog"

// Loader obtiene el valor desde el almacenamiento cuando no está en caché.
type Loader = func(ctx context.Context) (any, error)

// Cache caché versionado de un espacio de nombres (categories, fields, ...).
// Con client nil cada lectura llama al loader directamente.
type Cache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

// New construye el caché para namespace.
func New(client *redis.Client, ttl time.Duration, namespace string) *Cache {
	return &Cache{client: client, ttl: ttl, namespace: namespace}
}

func (c *Cache) versionKey() string {
	return strings.Join([]string{keyPrefix, c.namespace, "version"}, ":")
}

// Version devuelve la versión actual, inicializándola si no existe.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, c.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, c.versionKey(), 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, c.versionKey()).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey compone la clave con la versión vigente del espacio de nombres.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%s:%d", keyPrefix, c.namespace, joined, ver), nil
}

// FetchJSON decodifica en dest el valor cacheado bajo key o lo carga con loader
// y lo guarda. dest siempre recibe una copia independiente. Si Redis falla la
// lectura cae al loader sin cachear.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader Loader) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if c == nil || c.client == nil {
		return loadInto(ctx, dest, loader)
	}
	full, err := c.BuildKey(ctx, key)
	if err != nil {
		return loadInto(ctx, dest, loader)
	}
	payload, err := c.client.Get(ctx, full).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return loadInto(ctx, dest, loader)
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	// Un fallo al escribir no invalida la lectura.
	_ = c.client.Set(ctx, full, raw, c.ttl).Err()
	return json.Unmarshal(raw, dest)
}

// Bump invalida todo el espacio de nombres.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, c.versionKey()).Err(); err != nil {
		return fmt.Errorf("cache: bump %s: %w", c.namespace, err)
	}
	return nil
}

func loadInto(ctx context.Context, dest any, loader Loader) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
