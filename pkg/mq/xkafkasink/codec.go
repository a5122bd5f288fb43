package xkafkasink

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

// CodecVersion 是当前二进制格式版本。
const CodecVersion int32 = 1

// 二进制格式（大端）：
//
//	[version:int32][producerId:int64][epoch:int16][len:uint16][transactionalId:utf8]
const (
	headerSize = 4 + 8 + 2 + 2
	maxIDLen   = math.MaxUint16
)

// EncodeCommittable 把 committable 的身份编码为二进制格式。活句柄不参与序列化。
func EncodeCommittable(c *Committable) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil committable", ErrCorruptCommittable)
	}
	if len(c.transactionalID) > maxIDLen {
		return nil, fmt.Errorf("%w: transactional id longer than %d bytes", ErrCorruptCommittable, maxIDLen)
	}

	buf := make([]byte, headerSize, headerSize+len(c.transactionalID))
	binary.BigEndian.PutUint32(buf[0:4], uint32(CodecVersion))
	binary.BigEndian.PutUint64(buf[4:12], uint64(c.producerID))
	binary.BigEndian.PutUint16(buf[12:14], uint16(c.epoch))
	binary.BigEndian.PutUint16(buf[14:16], uint16(len(c.transactionalID)))
	return append(buf, c.transactionalID...), nil
}

// DecodeCommittable 解码 EncodeCommittable 的输出，得到不带活句柄的 committable。
func DecodeCommittable(data []byte) (*Committable, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptCommittable, len(data))
	}
	if version := int32(binary.BigEndian.Uint32(data[0:4])); version != CodecVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptCommittable, len(data))
	}

	producerID := int64(binary.BigEndian.Uint64(data[4:12]))
	epoch := int16(binary.BigEndian.Uint16(data[12:14]))
	idLen := int(binary.BigEndian.Uint16(data[14:16]))
	if len(data)-headerSize != idLen {
		return nil, fmt.Errorf("%w: id length %d, remaining %d", ErrCorruptCommittable, idLen, len(data)-headerSize)
	}
	id := data[headerSize:]
	if !utf8.Valid(id) {
		return nil, fmt.Errorf("%w: transactional id is not valid utf-8", ErrCorruptCommittable)
	}
	return NewCommittable(string(id), producerID, epoch)
}

// committableJSON 是 committable 的 JSON 表示，供 CLI 文件和调试输出使用。
type committableJSON struct {
	TransactionalID string `json:"transactionalId"`
	ProducerID      int64  `json:"producerId"`
	Epoch           int16  `json:"epoch"`
}

// MarshalJSON 输出 committable 的身份，不包含活句柄。
func (c *Committable) MarshalJSON() ([]byte, error) {
	return json.Marshal(committableJSON{
		TransactionalID: c.transactionalID,
		ProducerID:      c.producerID,
		Epoch:           c.epoch,
	})
}

// EncodeCommittablesJSON 把一组 committable 编码为 JSON 数组。
func EncodeCommittablesJSON(committables []*Committable) ([]byte, error) {
	if committables == nil {
		committables = []*Committable{}
	}
	return json.MarshalIndent(committables, "", "  ")
}

// DecodeCommittablesJSON 解码 JSON 数组，每个元素都经过 NewCommittable 校验。
func DecodeCommittablesJSON(data []byte) ([]*Committable, error) {
	var raw []committableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("xkafkasink: decode committables: %w", err)
	}
	out := make([]*Committable, 0, len(raw))
	for i, r := range raw {
		c, err := NewCommittable(r.TransactionalID, r.ProducerID, r.Epoch)
		if err != nil {
			return nil, fmt.Errorf("xkafkasink: committable #%d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
