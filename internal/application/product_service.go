package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/storeops/store-management-api/internal/domain/entity"
	repo "github.com/storeops/store-management-api/internal/domain/repository"
	"github.com/storeops/store-management-api/pkg/helpers"
)

const productCacheTTL = time.Minute

// ProductService implements the product catalog: plain CRUD plus the
// conditional stock reservation used by the order workflow. Redis,
// Elasticsearch and GCS are optional; a nil client disables the
// corresponding feature.
type ProductService struct {
	Repo      repo.ProductRepository
	Redis     *redis.Client
	ES        *elasticsearch.Client
	ESIndex   string
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewProductService(r repo.ProductRepository, rdb *redis.Client, es *elasticsearch.Client, esIndex string, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *ProductService {
	return &ProductService{
		Repo:      r,
		Redis:     rdb,
		ES:        es,
		ESIndex:   esIndex,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		Logger:    logger,
	}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func productCacheKey(id string) string {
	return "product:" + id
}

// Add persists a new product record. There is no domain rule that can
// reject a well-formed product.
func (s *ProductService) Add(ctx context.Context, in ProductInput) (*entity.Product, error) {
	p := &entity.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.Logger.WithField("product_id", p.ID).Info("product added")
	_ = s.indexProduct(ctx, p)
	return p, nil
}

// GetByID reads through a short-lived Redis cache.
func (s *ProductService) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if s.Redis != nil {
		var cached entity.Product
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, productCacheKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, productCacheKey(id), p, productCacheTTL); err != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("product cache write failed")
		}
	}
	return p, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]entity.Product, error) {
	return s.Repo.GetAll(ctx)
}

// Update overwrites name, description, price and quantity.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Quantity = in.Quantity

	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.invalidateCache(ctx, id)
	_ = s.indexProduct(ctx, p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidateCache(ctx, id)
	s.deleteFromIndex(ctx, id)
	s.Logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// Reserve validates requested quantity against available stock and
// decrements it in one conditional update, so two concurrent orders
// cannot both take the last units. It returns a snapshot of the
// product carrying the price in effect at reservation time. The
// decrement is persisted immediately and is not reversed if the
// enclosing order later fails.
func (s *ProductService) Reserve(ctx context.Context, id string, qty int) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.Repo.DecrementStock(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.Logger.WithFields(logrus.Fields{
			"product_id": id,
			"available":  p.Quantity,
			"requested":  qty,
		}).Error("insufficient stock to fulfill order")
		return nil, ErrInsufficientStock
	}

	p.Quantity -= qty
	s.invalidateCache(ctx, id)
	s.Logger.WithFields(logrus.Fields{
		"product_id": id,
		"remaining":  p.Quantity,
		"reserved":   qty,
	}).Info("stock reserved")
	return p, nil
}

// UploadImage stores a product image in GCS and records its public URL.
func (s *ProductService) UploadImage(ctx context.Context, id string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrProductNotFound
	}
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", id, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	p.ImageURL = url
	if err := s.Repo.Update(ctx, p); err != nil {
		return "", err
	}
	s.invalidateCache(ctx, id)
	_ = s.indexProduct(ctx, p)
	return url, nil
}

// Search performs a multi_match query on name and description.
func (s *ProductService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, productCacheKey(id)); err != nil {
		s.Logger.WithError(err).WithField("product_id", id).Warn("product cache invalidation failed")
	}
}

func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.String(),
		"quantity":    p.Quantity,
		"image_url":   p.ImageURL,
		"updated_at":  p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
	return nil
}

func (s *ProductService) deleteFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}
