package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Everforest Dark palette
var (
	colorTime      = "\x1b[38;5;107m"
	colorComponent = "\x1b[38;5;208m"
	colorPath      = "\x1b[38;5;109m"
	colorNumber    = "\x1b[38;5;108m"
	colorFg        = "\x1b[38;5;223m"
	colorWarn      = "\x1b[38;5;179m"
	colorWarnBg    = "\x1b[48;5;58m"
	colorErr       = "\x1b[38;5;167m"
	colorErrBg     = "\x1b[48;5;52m"
)

var bufferPool = buffer.NewPool()

// minimalEncoder implements a calm, compact console encoder
// Format: "13:04:35  pipeline  Generated  sdk.d.ts -> lib/sdk_source.dart  12ms"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	color           bool
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		color:   os.Getenv("NO_COLOR") == "",
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		color:   enc.color,
	}
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color || s == "" {
		return s
	}
	return color + s + colorReset
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(enc.paint(colorTime, ent.Time.Format("15:04:05")))

	// Level: only show for WARN/ERROR/DEBUG
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(enc.levelString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(colorComponent, ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(enc.paint(colorFg, ent.Message))

	if values := enc.extractFieldValues(fields); values != "" {
		final.AppendString("  ")
		final.AppendString(values)
	}

	final.AppendString("\n")
	return final, nil
}

// levelString returns bold + colored + background for WARN/ERROR
func (enc *minimalEncoder) levelString(level zapcore.Level) string {
	name := level.CapitalString()
	if !enc.color {
		return name
	}
	switch level {
	case zapcore.DebugLevel:
		return colorNumber + name + colorReset
	case zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarn + name + colorReset
	default:
		return colorBold + colorErrBg + colorErr + name + colorReset
	}
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.DurationType:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			return err.Error()
		}
		return ""
	case zapcore.StringerType:
		if s, ok := field.Interface.(fmt.Stringer); ok {
			return s.String()
		}
	case zapcore.TimeType, zapcore.TimeFullType, zapcore.Float64Type, zapcore.Float32Type:
		return encodeWithMap(field)
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}

	return encodeWithMap(field)
}

func encodeWithMap(field zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	field.AddTo(enc)
	if v, ok := enc.Fields[field.Key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// extractFieldValues renders structured fields compactly.
// file/output pairs render as "in -> out", duration_ms as "12ms"; every other
// field is kept as key=value so nothing is silently dropped.
func (enc *minimalEncoder) extractFieldValues(fields []zapcore.Field) string {
	var file, output, duration string
	var rest []string

	for _, field := range fields {
		if field.Type == zapcore.SkipType {
			continue
		}
		val := getFieldValue(field)
		switch field.Key {
		case FieldFile:
			file = val
		case FieldOutput:
			output = val
		case FieldDurationMS:
			duration = val
		default:
			if val == "" && field.Type == zapcore.ErrorType {
				continue
			}
			rest = append(rest, field.Key+"="+val)
		}
	}

	var values []string
	switch {
	case file != "" && output != "":
		values = append(values, enc.paint(colorPath, file)+" -> "+enc.paint(colorPath, output))
	case file != "":
		values = append(values, enc.paint(colorPath, file))
	case output != "":
		values = append(values, enc.paint(colorPath, output))
	}
	if duration != "" {
		values = append(values, enc.paint(colorNumber, duration)+"ms")
	}
	values = append(values, rest...)

	return strings.Join(values, "  ")
}
