// 仿真结果输出，配置了MongoDB时写入一条结果记录
package output

import (
	"context"
	"time"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/junction"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
)

var log = logrus.WithField("module", "output")

// Record 一次仿真的结果记录
type Record struct {
	Job       string          `bson:"job"`
	Scenario  string          `bson:"scenario"`
	CreatedAt time.Time       `bson:"created_at"`
	Report    junction.Report `bson:"report"`
}

// Sink 结果输出
type Sink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New 创建结果输出
// 说明：未配置URI或集合时返回nil，Write与Close对nil接收者安全
func New(c config.Output) *Sink {
	if c.URI == "" || c.Col == "" {
		log.Info("no output database, results go to log only")
		return nil
	}
	client := mongoutil.NewClient(c.URI)
	return &Sink{
		client: client,
		coll:   mongoutil.GetMongoColl(client, c),
	}
}

// Write 写入一条结果记录
func (s *Sink) Write(ctx context.Context, r Record) error {
	if s == nil {
		return nil
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.coll.InsertOne(ctx, r)
	if err != nil {
		return err
	}
	log.Infof("results saved to %s.%s (%v)", s.coll.Database().Name(), s.coll.Name(), res.InsertedID)
	return nil
}

// Close 断开数据库连接
func (s *Sink) Close() {
	if s == nil {
		return
	}
	if err := s.client.Disconnect(context.Background()); err != nil {
		log.Warnf("disconnect output database: %v", err)
	}
}
