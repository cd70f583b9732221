package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
)

func TestRetailerService_CRUD(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewRetailerService(repo, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateRetailerRequest{Name: "Outdoor Co", Website: "https://outdoor.example"}, "admin-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if !created.IsActive {
		t.Error("新零售商默认应为启用")
	}

	updated, err := svc.Update(ctx, created.ID, &dto.UpdateRetailerRequest{IsActive: boolPtr(false)}, "admin-1")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.IsActive {
		t.Error("应已停用")
	}

	active, _, _ := svc.List(ctx, &dto.RetailerListRequest{})
	if len(active) != 0 {
		t.Errorf("默认不应列出停用零售商，实际 %d", len(active))
	}
	all, _, _ := svc.List(ctx, &dto.RetailerListRequest{IncludeInactive: true, Keyword: "outdoor"})
	if len(all) != 1 {
		t.Errorf("include_inactive 应列出 1 个，实际 %d", len(all))
	}

	if err := svc.Delete(ctx, created.ID, "admin-1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, ErrRetailerNotFound) {
		t.Errorf("删除后应返回 ErrRetailerNotFound，实际: %v", err)
	}
}
