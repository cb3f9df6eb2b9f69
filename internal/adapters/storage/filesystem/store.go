// Package filesystem は添付ファイルをローカルディスクに保存する attachment.FileStorage の実装です。
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
)

// Store はルートディレクトリ配下に添付ファイルを保存します。
// パスはすべてルートからの相対パスで扱います。
type Store struct {
	root string
}

// New は Store を生成します。ルートディレクトリが無ければ作成します。
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: resolve root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("filesystem: create root %s: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// Copy は srcPath のファイルを所有者・カテゴリごとのディレクトリへ新しい名前で複製し、相対パスを返します。
// 書き込みは一時ファイルに行い、fsync 後に rename します。
func (s *Store) Copy(ctx context.Context, srcPath string, ownerType attachment.OwnerType, ownerID string, category attachment.Category) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := s.resolve(srcPath)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(ownerID, `/\`) || ownerID == "" || ownerID == "." || ownerID == ".." {
		return "", fmt.Errorf("%w: owner id %q", attachment.ErrInvalidPath, ownerID)
	}

	rel := filepath.ToSlash(filepath.Join(string(ownerType), ownerID, string(category), uuid.NewString()+filepath.Ext(srcPath)))
	dst, err := s.resolve(rel)
	if err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("filesystem: open %s: %w", srcPath, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fmt.Errorf("filesystem: create dir: %w", err)
	}

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("filesystem: create temp file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("filesystem: copy %s: %w", srcPath, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("filesystem: fsync: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("filesystem: close: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("filesystem: rename: %w", err)
	}

	return rel, nil
}

// Remove はファイルを削除します。既に存在しない場合は nil を返します。
func (s *Store) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filesystem: remove %s: %w", path, err)
	}
	return nil
}

// resolve は相対パスをルート配下の絶対パスに変換します。ルートの外を指す場合はエラーです。
func (s *Store) resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", attachment.ErrInvalidPath, rel)
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	within, err := filepath.Rel(s.root, full)
	if err != nil || within == "." || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", attachment.ErrInvalidPath, rel)
	}
	return full, nil
}
