package nextcloud

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"noticeboard/internal/model"
	"noticeboard/pkg/excerpt"
)

// DefaultExcerptLength 远程公告摘要长度
const DefaultExcerptLength = 165

// RawGroup 公告可见的群组
type RawGroup struct {
	ID   string
	Name string
}

// RawRecord 与格式无关的原始公告记录
type RawRecord struct {
	ID       string
	AuthorID string
	Time     int64
	Subject  string
	Message  string
	Groups   []RawGroup
}

// flexString 兼容数字和字符串
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type jsonGroup struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

type jsonRecord struct {
	ID       flexString  `json:"id"`
	AuthorID flexString  `json:"author_id"`
	Time     flexString  `json:"time"`
	Subject  string      `json:"subject"`
	Message  string      `json:"message"`
	Groups   []jsonGroup `json:"groups"`
}

type jsonEnvelope struct {
	OCS *struct {
		Data []jsonRecord `json:"data"`
	} `json:"ocs"`
}

type xmlGroup struct {
	ID   string `xml:"id"`
	Name string `xml:"name"`
}

type xmlRecord struct {
	ID       string     `xml:"id"`
	AuthorID string     `xml:"author_id"`
	Time     string     `xml:"time"`
	Subject  string     `xml:"subject"`
	Message  string     `xml:"message"`
	Groups   []xmlGroup `xml:"groups>element"`
}

type xmlEnvelope struct {
	XMLName xml.Name    `xml:"ocs"`
	Data    []xmlRecord `xml:"data>element"`
}

// ParsePayload 解析 JSON 或 XML 响应体
func ParsePayload(body []byte, format Format) ([]RawRecord, error) {
	switch format {
	case FormatJSON:
		return parseJSON(body)
	case FormatXML:
		return parseXML(body)
	default:
		return nil, &ParseError{Format: format, Err: fmt.Errorf("unknown format")}
	}
}

func parseJSON(body []byte) ([]RawRecord, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	if env.OCS == nil {
		return nil, &ParseError{Format: FormatJSON, Err: errors.New("missing ocs envelope")}
	}

	records := make([]RawRecord, 0, len(env.OCS.Data))
	for i, r := range env.OCS.Data {
		ts, err := parseEpoch(string(r.Time))
		if err != nil {
			return nil, &ParseError{Format: FormatJSON, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		rec := RawRecord{
			ID:       strings.TrimSpace(string(r.ID)),
			AuthorID: strings.TrimSpace(string(r.AuthorID)),
			Time:     ts,
			Subject:  r.Subject,
			Message:  r.Message,
		}
		for _, g := range r.Groups {
			rec.Groups = append(rec.Groups, RawGroup{ID: strings.TrimSpace(string(g.ID)), Name: g.Name})
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseXML(body []byte) ([]RawRecord, error) {
	var env xmlEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Format: FormatXML, Err: err}
	}

	records := make([]RawRecord, 0, len(env.Data))
	for i, r := range env.Data {
		ts, err := parseEpoch(r.Time)
		if err != nil {
			return nil, &ParseError{Format: FormatXML, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		rec := RawRecord{
			ID:       strings.TrimSpace(r.ID),
			AuthorID: strings.TrimSpace(r.AuthorID),
			Time:     ts,
			Subject:  r.Subject,
			Message:  r.Message,
		}
		for _, g := range r.Groups {
			rec.Groups = append(rec.Groups, RawGroup{ID: strings.TrimSpace(g.ID), Name: g.Name})
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseEpoch(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("missing time")
	}
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ts, nil
	}
	// 数字形式可能带小数或指数
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	return int64(f), nil
}

// Normalize 转换为统一的公告结构，摘要在此处即时生成
func Normalize(r RawRecord, excerptLen int) model.Announcement {
	var groups []string
	if len(r.Groups) > 0 {
		groups = make([]string, 0, len(r.Groups))
		for _, g := range r.Groups {
			groups = append(groups, g.ID)
		}
	}
	return model.Announcement{
		ID:          r.ID,
		Source:      model.SourceRemote,
		AuthorID:    r.AuthorID,
		PublishedAt: time.Unix(r.Time, 0).UTC(),
		Title:       r.Subject,
		Body:        r.Message,
		Excerpt:     excerpt.Derive(r.Message, excerptLen),
		Groups:      groups,
	}
}

// NormalizePayload 解析并归一化整个响应体
func NormalizePayload(body []byte, format Format, excerptLen int) ([]model.Announcement, error) {
	records, err := ParsePayload(body, format)
	if err != nil {
		return nil, err
	}
	out := make([]model.Announcement, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r, excerptLen))
	}
	return out, nil
}
