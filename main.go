package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossway-sim/task"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	// 模拟任务名，写入结果记录
	job = flag.String("job", "job0", "the name of the simulation task")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path (empty means built-in defaults)")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// 覆盖配置文件中的控制项
	policy = flag.String("policy", "", "override control.policy (normal|smart)")
	speed  = flag.Float64("speed", 0, "override control.speed, clamped to [1,20]")
	sample = flag.Int("sample", 0, "override control.sample_minutes")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "crossway")
)

func loadConfig() config.Config {
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Info("no config given, use built-in defaults")
		return config.Default()
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	return c
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	c := loadConfig()
	if *speed != 0 {
		c.Control.Speed = config.ClampSpeed(*speed)
	}
	log.Infof("%+v", c)

	t, err := task.NewContext(*job, c)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	defer t.Close()
	if *policy != "" {
		if err := t.SelectPolicy(*policy); err != nil {
			log.Fatalf("invalid policy: %v", err)
		}
	}
	if *sample != 0 {
		if err := t.SetSampleDuration(*sample); err != nil {
			log.Fatalf("invalid sample duration: %v", err)
		}
	}

	// Ctrl-C结束仿真，仍然输出结果
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	r := t.Run(ctx)
	log.Infof("idle time avg: %.2fs", r.IdleTimeAvg)
	log.Infof("throughput: %.2f vehicles/min", r.ThroughputPerMinute)
	log.Infof("elapsed: %.2f min", r.ElapsedMinutes)
}
