package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSeedCount 是没有指定种子时随机生成的种子个数
const DefaultSeedCount = 5

// ParseSeeds 解析逗号分隔的非负整数种子，空字符串和空项会被忽略
func ParseSeeds(s string) ([]uint64, error) {
	var seeds []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		seed, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("无效的种子 %q", part)
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

// ParseSeedsOrRandom 同 ParseSeeds，但在没有种子时随机生成
func ParseSeedsOrRandom(s string) ([]uint64, error) {
	seeds, err := ParseSeeds(s)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		seeds = GenerateRandomSeeds(DefaultSeedCount)
	}
	return seeds, nil
}

func FormatSeeds(seeds []uint64) string {
	parts := make([]string, len(seeds))
	for i, seed := range seeds {
		parts[i] = strconv.FormatUint(seed, 10)
	}
	return strings.Join(parts, ",")
}
