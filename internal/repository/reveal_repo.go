package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	pkgerrors "github.com/claudialoqatr/lost-found-helper-sub000/pkg/errors"
)

const (
	// revealRateLimitSQLState reveal_contact 超出配额时抛出的自定义 SQLSTATE
	revealRateLimitSQLState = "LQ429"
	// revealRateLimitMarker 旧版函数仅通过消息文本标识限流
	revealRateLimitMarker = "Rate limit exceeded"
)

// RevealRepository 调用 reveal_contact 数据库函数
type RevealRepository interface {
	// RevealContact 返回 nil, nil 表示函数未返回任何行（标签不存在 / 非公开 / 未激活）
	RevealContact(ctx context.Context, identifier string, scanID int64, hourlyQuota int) (*model.RevealedContact, error)
}

type revealRepo struct {
	db *gorm.DB
}

// NewRevealRepo 创建 RevealRepository 实例
func NewRevealRepo(db *gorm.DB) RevealRepository {
	return &revealRepo{db: db}
}

func (r *revealRepo) RevealContact(ctx context.Context, identifier string, scanID int64, hourlyQuota int) (*model.RevealedContact, error) {
	var rows []model.RevealedContact
	err := r.db.WithContext(ctx).
		Raw("SELECT owner_name, owner_email, owner_phone, whatsapp_url FROM reveal_contact(?, ?, ?)",
			identifier, scanID, hourlyQuota).
		Scan(&rows).Error
	if err != nil {
		return nil, classifyRevealError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// classifyRevealError 将数据库函数抛出的错误转换为 RevealProcedureError
// 非 PostgreSQL 错误（连接失败、超时等）原样返回
func classifyRevealError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	kind := pkgerrors.RevealKindUnknown
	if pgErr.Code == revealRateLimitSQLState || strings.Contains(pgErr.Message, revealRateLimitMarker) {
		kind = pkgerrors.RevealKindRateLimited
	}
	return &pkgerrors.RevealProcedureError{
		Kind:    kind,
		Message: pgErr.Message,
		Err:     err,
	}
}
