// Package service 包含了应用的业务逻辑层。
package service

import (
	"drafting-wizard-go/internal/repository"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 业务错误分类，handler 层据此映射 HTTP 状态码。
var (
	// ErrNotFound 标识符无法解析为已存在的分类或 draft。
	ErrNotFound = errors.New("resource not found")
	// ErrConflict 标签名称重复。
	ErrConflict = errors.New("resource already exists")
	// ErrProtected 试图删除内置分类。
	ErrProtected = errors.New("resource is protected")
	// ErrInvalid 输入不合法。
	ErrInvalid = errors.New("invalid input")
	// ErrUnavailable 依赖的归档或检索后端未启用。
	ErrUnavailable = errors.New("backend unavailable")
)

// notFound 把仓库层的记录不存在错误翻译为 ErrNotFound，其他错误原样返回。
func notFound(err error, format string, args ...interface{}) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
