// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"
	"log"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：以固定种子生成可复现的随机序列
// 说明：仿真是单线程推进的，不提供加锁版本
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子（会加上rand.seed_offset）
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Pick 在[0, n)中均匀选取一个下标
func (e *Engine) Pick(n int) int {
	if n <= 0 {
		log.Panicf("randengine: Pick: n must be positive, got %d", n)
	}
	return e.Intn(n)
}

// DiscreteDistribution 按给定权重生成随机下标
// 功能：根据权重数组生成离散分布的随机数
// 参数：weight-权重数组，每个元素表示对应索引的概率权重
// 返回：随机生成的索引值（0到len(weight)-1）
// 算法说明：
// 1. 计算总权重并在[0, 总权重)范围内生成随机数
// 2. 累积权重直到超过随机数，返回对应索引
// 3. 总权重不为正则panic
func (e *Engine) DiscreteDistribution(weight []float64) int32 {
	random := .0
	for _, w := range weight {
		random += w
	}
	if random <= 0 {
		log.Panicf("randengine: DiscreteDistribution: total weight %f <= 0", random)
	}
	random *= e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	log.Panicf("randengine: DiscreteDistribution: sum: %f random: %f", sum, random)
	return -1
}

// PTrue 以指定概率返回true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}
