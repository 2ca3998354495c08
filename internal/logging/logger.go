// Package logging はアプリケーション全体で使う logrus ロガーを提供します。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger はグローバルな logrus インスタンスです。Init を呼ぶまではテキスト形式で標準エラーに出力します。
var Logger = logrus.New()

// Options はロガーの設定です。
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text または json
	File   string // 空でなければローテーション付きでファイルにも出力
}

// Init はグローバルロガーを設定します。戻り値の io.Closer はログファイルを閉じます。
func Init(opts Options) (io.Closer, error) {
	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		Logger.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}

	logFile := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	Logger.WithField("file", opts.File).Info("Logger initialized")
	return logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
