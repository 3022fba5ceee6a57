package input

import (
	"context"
	"fmt"
	"os"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"
)

// Init 加载路口场景
// 功能：按配置从文件、MongoDB或内置默认场景中加载
// 参数：c-输入配置
// 返回：场景指针
// 算法说明：
// 1. 配置了文件路径时从YAML文件读取
// 2. 否则配置了MongoDB连接与集合时按场景名查找
// 3. 都没有时使用内置的十字路口场景
// 说明：加载失败或场景非法时panic
func Init(c config.Input) *Scenario {
	var (
		sc  Scenario
		err error
	)
	switch {
	case c.Scenario.File != "":
		sc, err = LoadFile(c.Scenario.File)
	case c.URI != "" && c.Scenario.Col != "":
		client := mongoutil.NewClient(c.URI)
		defer client.Disconnect(context.Background())
		sc, err = loadFromMongo(context.Background(), client, c.Scenario)
	default:
		sc = Default()
	}
	if err != nil {
		log.Panicf("failed to load scenario: %v", err)
	}
	if err := sc.Validate(); err != nil {
		log.Panicf("invalid scenario %q: %v", sc.Name, err)
	}
	log.Infof("scenario %q: %d segments, %d spawners", sc.Name, len(sc.Segments), len(sc.Spawners))
	return &sc
}

// LoadFile 从YAML文件读取场景
func LoadFile(path string) (Scenario, error) {
	var sc Scenario
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, err
	}
	if err := yaml.UnmarshalStrict(data, &sc); err != nil {
		return sc, fmt.Errorf("%w: %v", entity.ErrConfiguration, err)
	}
	return sc, nil
}

// loadFromMongo 按场景名从MongoDB读取
func loadFromMongo(ctx context.Context, client *mongo.Client, p config.InputPath) (Scenario, error) {
	var sc Scenario
	log.Infof("start fetching scenario %q from %s.%s", p.Name, p.DB, p.Col)
	coll := mongoutil.GetMongoColl(client, p)
	if err := coll.FindOne(ctx, bson.M{"name": p.Name}).Decode(&sc); err != nil {
		return sc, fmt.Errorf("find scenario %q in %s.%s: %w", p.Name, p.DB, p.Col, err)
	}
	log.Infof("finish fetching scenario %q", p.Name)
	return sc, nil
}

// Validate 检查场景
// 说明：前四个路段为带信号灯的进口道，路点引用的路段必须存在
func (sc Scenario) Validate() error {
	if len(sc.Segments) < entity.ApproachCount {
		return fmt.Errorf("%w: need at least %d segments, got %d", entity.ErrConfiguration, entity.ApproachCount, len(sc.Segments))
	}
	for i, seg := range sc.Segments {
		if seg.Signal != (i < entity.ApproachCount) {
			return fmt.Errorf("%w: segment %d (%s): only the first %d segments carry a signal", entity.ErrConfiguration, i, seg.Name, entity.ApproachCount)
		}
	}
	for _, sp := range sc.Spawners {
		for j, path := range sp.Paths {
			for k, wp := range path {
				if wp.Point.Segment < 0 || int(wp.Point.Segment) >= len(sc.Segments) {
					return fmt.Errorf("%w: spawner %s path %d waypoint %d: no segment %d",
						entity.ErrConfiguration, sp.Name, j, k, wp.Point.Segment)
				}
			}
		}
	}
	return nil
}
