package service

import (
	"context"

	"github.com/user/movielog/internal/logging"
	"github.com/user/movielog/internal/repository"
)

// MaintenanceService 启动时的数据整理
type MaintenanceService struct {
	repos *repository.Repositories
}

// NewMaintenanceService 创建整理服务
func NewMaintenanceService(repos *repository.Repositories) *MaintenanceService {
	return &MaintenanceService{repos: repos}
}

// Run 执行一次整理，失败只记录日志
func (s *MaintenanceService) Run(ctx context.Context) {
	log := logging.Component("maintenance")
	log.Info().Msg("[Maintenance] 开始整理数据...")

	// 旧版本写入记录与删除想看不在同一事务，可能残留已看过的想看条目
	deleted, err := s.repos.Wishlist.DeleteWatched(ctx)
	if err != nil {
		log.Error().Err(err).Msg("[Maintenance] 清理想看列表失败")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("[Maintenance] 已清理已看过的想看条目")
	}
}
