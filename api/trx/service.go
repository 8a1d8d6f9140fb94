package trx

import (
	"ArthaFlowSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TrxService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
}

func NewTrxService(cfg map[string]interface{}, pgxPool *pgxpool.Pool) serviceiface.Service {
	return &TrxService{config: cfg, pgxPool: pgxPool}
}

func (s *TrxService) Name() string {
	return "trx"
}

func (s *TrxService) Start() error {
	uploadDir := ""
	if v, ok := s.config["upload_dir"].(string); ok {
		uploadDir = v
	}
	go StartTrxService(s.pgxPool, uploadDir)
	return nil
}

func (s *TrxService) Stop() error {
	return nil
}
