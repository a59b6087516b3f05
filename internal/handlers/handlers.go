package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"loan_allocator/internal/config/connections/mongo"
	"loan_allocator/internal/config/connections/postgres"
	"loan_allocator/internal/config/connections/redis"
	"loan_allocator/internal/config/connections/s3"
	"loan_allocator/internal/repository/cache"
)

type Handlers struct {
	Postgres *postgres.Postgres
	Mongo    *mongo.Mongo
	S3       *s3.S3
	Redis    *redis.Redis
	HTTP     *http.Client

	Results *cache.ResultCache

	Logger *log.Logger
}

func New(pg *postgres.Postgres, mg *mongo.Mongo, s3c *s3.S3, rd *redis.Redis) *Handlers {
	httpClient := &http.Client{}

	var results *cache.ResultCache
	if rd != nil && rd.Client != nil {
		results = cache.NewResultCache(rd.Client, 30*24*time.Hour)
	}

	return &Handlers{
		Postgres: pg,
		Mongo:    mg,
		S3:       s3c,
		Redis:    rd,
		HTTP:     httpClient,
		Results:  results,
		Logger:   log.Default(),
	}
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
