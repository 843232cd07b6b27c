package window

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 入场时间窗口 + 新闻事件否决
//
// 窗口按配置时区的当天时间判断，开始时刻包含、结束时刻不包含。
// 新闻否决是注入的外部能力；没有注入实现（veto为nil）时默认放行，
// 这是有意的fail-open策略：否决源不可用不应该让策略停摆。

// NewsVeto 返回true表示当前有重大新闻事件，禁止入场
type NewsVeto func(now time.Time) bool

type Gate struct {
	loc   *time.Location
	start int // 当天分钟数，含
	end   int // 当天分钟数，不含
	veto  NewsVeto
}

// NewGate 创建入场窗口，start/end形如 "08:00"、"12:00"
func NewGate(timezone, start, end string, veto NewsVeto) (*Gate, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	s, err := parseMinutes(start)
	if err != nil {
		return nil, err
	}
	e, err := parseMinutes(end)
	if err != nil {
		return nil, err
	}
	return &Gate{loc: loc, start: s, end: e, veto: veto}, nil
}

// Allows 当前时刻是否允许入场
func (g *Gate) Allows(now time.Time) bool {
	if !g.inWindow(now) {
		return false
	}
	if g.veto != nil && g.veto(now) {
		return false
	}
	return true
}

func (g *Gate) inWindow(now time.Time) bool {
	t := now.In(g.loc)
	m := t.Hour()*60 + t.Minute()

	if g.start <= g.end {
		// [start, end)
		return m >= g.start && m < g.end
	}
	// 跨午夜窗口，例如 22:00-02:00
	return m >= g.start || m < g.end
}

func parseMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
