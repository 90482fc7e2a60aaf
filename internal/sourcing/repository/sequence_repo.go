package repository

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"gorm.io/gorm"
)

// SequenceRepository 序列计数器仓库
// 所有人读编号（采购单号、引用码、拆分编号）都经由这里发号。
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next 原子自增并返回自增后的值，计数器不存在时从1开始
// 单条upsert语句完成读-增-写，并发调用不会拿到相同的值
func (r *SequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sourcing_sequence_counters (key, value) VALUES (?, 1)
		ON CONFLICT (key) DO UPDATE SET value = sourcing_sequence_counters.value + 1
		RETURNING value
	`, key).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return value, nil
}

// NextAtLeast 带下限的自增
// 自增结果低于下限时补一次修正写并返回下限值。修正写与自增不在同一语句内，
// 两个几乎同时的首次创建之间存在竞争窗口，下限值可能被发出两次；
// 依赖编号列上的唯一约束兜底。
func (r *SequenceRepository) NextAtLeast(ctx context.Context, key string, floor int64) (int64, error) {
	value, err := r.Next(ctx, key)
	if err != nil {
		return 0, err
	}
	if value >= floor {
		return value, nil
	}

	err = r.db.WithContext(ctx).
		Model(&entity.SequenceCounter{}).
		Where("key = ? AND value < ?", key, floor).
		Update("value", floor).Error
	if err != nil {
		return 0, fmt.Errorf("apply sequence floor %s: %w", key, err)
	}
	return floor, nil
}

// Current 读取当前值（仅用于展示，不参与发号）
func (r *SequenceRepository) Current(ctx context.Context, key string) (int64, error) {
	var counter entity.SequenceCounter
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&counter).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return counter.Value, nil
}
