package logger

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ILogger is the structured logger every component receives. Module names
// the subsystem ("CRAWL", "PDF", "RETRIEVAL", ...) so operators can filter.
type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
	GetLogs(level, module string, limit, offset int) ([]LogEntry, error)
	GetLogById(id string) (*LogEntry, error)
}

var ErrLogNotFound = errors.New("log not found")

// Bounds the scan behind GetLogById.
const lookupWindow = 10000

type ZapLogger struct {
	logger   *zap.Logger
	filePath string
}

func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	fileEncoder := zapcore.NewJSONEncoder(fileEncoderConfig())

	consoleEncoder := fileEncoder
	consoleLevel := zapcore.InfoLevel
	if !isProd {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.AddSync(rotatingFile(logFilePath)), zapcore.InfoLevel),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel),
	)

	return &ZapLogger{
		logger:   zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)),
		filePath: logFilePath,
	}
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// The key names here are what LogEntry decodes.
func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.write(zapcore.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.write(zapcore.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.write(zapcore.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.write(zapcore.ErrorLevel, module, message, details)
}

func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	ce := l.logger.Check(level, message)
	if ce == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}

	fields := []zap.Field{zap.String("module", module), zap.Any("details", details)}
	if err, ok := details["error"].(error); ok {
		fields = append(fields, zap.NamedError("error_ref", err))
	}
	if key, ok := details["job_key"].(string); ok {
		fields = append(fields, zap.String("job_key", key))
	}
	ce.Write(fields...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

type LogEntry struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module,omitempty"`
	JobKey    string                 `json:"job_key,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// GetLogs reads the active log file newest first. Rotated backups are not
// scanned. Empty level or module matches everything.
func (l *ZapLogger) GetLogs(level, module string, limit, offset int) ([]LogEntry, error) {
	if l.filePath == "" {
		return []LogEntry{}, nil
	}
	file, err := os.Open(l.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return []LogEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []LogEntry
	for scanner.Scan() {
		line := scanner.Bytes()
		var entry LogEntry
		if json.Unmarshal(line, &entry) != nil {
			continue
		}
		if (level != "" && entry.Level != level) || (module != "" && entry.Module != module) {
			continue
		}
		if entry.Id == "" {
			entry.Id = lineId(line)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return newestPage(entries, limit, offset), nil
}

func (l *ZapLogger) GetLogById(id string) (*LogEntry, error) {
	entries, err := l.GetLogs("", "", lookupWindow, 0)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Id == id {
			return &entries[i], nil
		}
	}
	return nil, ErrLogNotFound
}

// Lines carry no id of their own, so one is derived from the raw bytes.
func lineId(line []byte) string {
	sum := sha256.Sum256(line)
	return hex.EncodeToString(sum[:12])
}

func newestPage(entries []LogEntry, limit, offset int) []LogEntry {
	total := len(entries)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []LogEntry{}
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]LogEntry, 0, end-offset)
	for i := total - 1 - offset; i >= total-end; i-- {
		page = append(page, entries[i])
	}
	return page
}
