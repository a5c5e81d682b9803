package layout

import (
	"encoding/json"
	"io"

	"github.com/ByLCY/ttp/atomicfile"
)

// WriteDebugJSON 将拟合结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *FittedLayout, path string) error {
	if res == nil {
		return nil
	}
	return atomicfile.WriteWith(path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	})
}
