package atomicfile

import (
	"fmt"
	"io"
	"os"
)

// Spool 是一个只在自身生命周期内存在的临时输出文件。
// 调用方必须 defer Close；Close 总是删除文件，可重复调用。
type Spool struct {
	f      *os.File
	name   string
	closed bool
}

// NewSpool 在 dir 下创建临时文件；dir 为空时使用系统临时目录。
func NewSpool(dir, pattern string) (*Spool, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("创建临时输出文件失败: %w", err)
	}
	return &Spool{f: f, name: f.Name()}, nil
}

// Name 返回临时文件路径。
func (s *Spool) Name() string { return s.name }

// Write implements io.Writer.
func (s *Spool) Write(p []byte) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.f.Write(p)
}

// Bytes 刷盘后读回全部内容。
func (s *Spool) Bytes() ([]byte, error) {
	if s.closed {
		return nil, os.ErrClosed
	}
	if err := s.f.Sync(); err != nil {
		return nil, fmt.Errorf("同步临时输出文件失败: %w", err)
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("定位临时输出文件失败: %w", err)
	}
	data, err := io.ReadAll(s.f)
	if err != nil {
		return nil, fmt.Errorf("读取临时输出文件失败: %w", err)
	}
	return data, nil
}

// Close 关闭并删除临时文件。
func (s *Spool) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	closeErr := s.f.Close()
	if err := os.Remove(s.name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除临时输出文件失败: %w", err)
	}
	return closeErr
}
