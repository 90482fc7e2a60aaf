package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-sourcing/internal/config"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
)

// SequenceService 编号服务
// 在原子计数器之上套各类编号的格式规则，所有编号从这里出
type SequenceService struct {
	seqRepo *repository.SequenceRepository
	cfg     *config.Config
}

func NewSequenceService(seqRepo *repository.SequenceRepository, cfg *config.Config) *SequenceService {
	return &SequenceService{seqRepo: seqRepo, cfg: cfg}
}

// PONumber 生成采购单号 <ORG>-<YEAR>-NNN
func (s *SequenceService) PONumber(ctx context.Context) (string, error) {
	value, err := s.seqRepo.Next(ctx, entity.SeqKeyPurchaseOrder)
	if err != nil {
		return "", fmt.Errorf("生成采购单号失败: %w", err)
	}
	year := time.Now().Format("2006")
	return fmt.Sprintf("%s-%s-%03d", s.cfg.Sourcing.OrgPrefix, year, value), nil
}

// ReferenceCode 生成引用码 <PREFIX>NNNN
func (s *SequenceService) ReferenceCode(ctx context.Context) (string, error) {
	value, err := s.seqRepo.Next(ctx, entity.SeqKeyReference)
	if err != nil {
		return "", fmt.Errorf("生成引用码失败: %w", err)
	}
	return fmt.Sprintf("%s%04d", s.cfg.Sourcing.ReferencePrefix, value), nil
}

// CatalogNumber 生成目录编号，不低于配置的下限（默认9000）
func (s *SequenceService) CatalogNumber(ctx context.Context) (int64, error) {
	value, err := s.seqRepo.NextAtLeast(ctx, entity.SeqKeyCatalog, s.cfg.Sourcing.CatalogFloor)
	if err != nil {
		return 0, fmt.Errorf("生成目录编号失败: %w", err)
	}
	return value, nil
}

// SplitNumber 生成拆分交付编号 SPLNNNN
func (s *SequenceService) SplitNumber(ctx context.Context) (string, error) {
	value, err := s.seqRepo.Next(ctx, entity.SeqKeySplit)
	if err != nil {
		return "", fmt.Errorf("生成拆分编号失败: %w", err)
	}
	return fmt.Sprintf("SPL%04d", value), nil
}
