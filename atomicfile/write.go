// Package atomicfile 负责贴纸、排版调试 JSON 与配置文件的落盘。
//
// 命令行渲染的输出文件可能正被图片查看器或配置监听器读取，所以这些文件
// 总是先写到同目录的临时文件，再整体替换目标；动画编码过程中的中间结果
// 则放在 Spool 里，渲染结束即删除。
package atomicfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write 把 data 整体替换到 path。
func Write(path string, data []byte, perm os.FileMode) error {
	return WriteWith(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteWith 让 encode 直接向临时文件写入，成功后替换 path。
// encode 或任一文件操作失败时 path 保持原样，临时文件被删除。
func WriteWith(path string, perm os.FileMode, encode func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("创建 %s 的临时文件失败: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = encode(bw); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	if err = f.Chmod(perm); err != nil {
		return fmt.Errorf("设置 %s 权限失败: %w", path, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("同步 %s 失败: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("关闭 %s 的临时文件失败: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("替换 %s 失败: %w", path, err)
	}
	return nil
}
