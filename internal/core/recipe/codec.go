package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IngredientShape 食材在 JSON 中的原始形態
type IngredientShape int

const (
	ShapeString IngredientShape = iota // "name"
	ShapePair                          // ["name", "amount"]
	ShapeRecord                        // {"name": ..., "amount": ...}
)

// Ingredient 食材，可由三種 JSON 形態解碼並以原形態編碼回去
type Ingredient struct {
	Name   string
	Amount string
	Shape  IngredientShape
}

// Line 回傳 "name (amount)" 或單純 name
func (i Ingredient) Line() string {
	if i.Amount == "" {
		return i.Name
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.Amount)
}

func (i Ingredient) MarshalJSON() ([]byte, error) {
	switch i.Shape {
	case ShapePair:
		return json.Marshal([]string{i.Name, i.Amount})
	case ShapeRecord:
		return json.Marshal(struct {
			Name   string `json:"name"`
			Amount string `json:"amount"`
		}{i.Name, i.Amount})
	default:
		return json.Marshal(i.Name)
	}
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = Ingredient{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Ingredient{Name: s, Shape: ShapeString}
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		out := Ingredient{Shape: ShapePair}
		if len(parts) > 0 {
			out.Name = scalarText(parts[0])
		}
		if len(parts) > 1 {
			out.Amount = scalarText(parts[1])
		}
		*i = out
	case '{':
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		*i = Ingredient{Name: scalarText(rec["name"]), Amount: scalarText(rec["amount"]), Shape: ShapeRecord}
	default:
		*i = Ingredient{Name: scalarText(data), Shape: ShapeString}
	}
	return nil
}

// Step 步驟，可為字串或 {"step": ...}
type Step struct {
	Text   string
	Record bool
}

func (s Step) MarshalJSON() ([]byte, error) {
	if s.Record {
		return json.Marshal(struct {
			Step string `json:"step"`
		}{s.Text})
	}
	return json.Marshal(s.Text)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		*s = Step{Text: scalarText(rec["step"]), Record: true}
		return nil
	}
	*s = Step{Text: scalarText(data)}
	return nil
}

// StringList 字串清單，接受單一字串並包成一個元素
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = StringList{}
		return nil
	}
	if data[0] != '[' {
		text := scalarText(data)
		if text == "" {
			*l = StringList{}
		} else {
			*l = StringList{text}
		}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for _, r := range raw {
		if text := scalarText(r); text != "" {
			out = append(out, text)
		}
	}
	*l = out
	return nil
}

// Number 寬鬆的數值，接受數字字串，無法解析時為 0
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// String 以最短形式輸出數值
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Int 取整數部分
func (n Number) Int() int {
	return int(n)
}

// scalarText 將 JSON 純量轉為文字，物件與陣列回傳空字串
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[':
		return ""
	default:
		return string(raw)
	}
}
