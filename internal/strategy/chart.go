package strategy

import (
	"strconv"

	"blackjack-engine/internal/game"
)

type cell uint8

const (
	cellHit cell = iota
	cellStand
	// cellDouble удвоить, иначе взять
	cellDouble
	// cellDoubleStand удвоить, иначе стоять
	cellDoubleStand
	cellSplit
	// cellSurrender сдаться, иначе по сумме: до 15 взять, выше стоять
	cellSurrender
)

var cellCodes = map[cell]string{
	cellHit:         "H",
	cellStand:       "S",
	cellDouble:      "D",
	cellDoubleStand: "Ds",
	cellSplit:       "P",
	cellSurrender:   "R",
}

func (c cell) String() string {
	return cellCodes[c]
}

const (
	minUp = 2
	maxUp = 11
)

// Chart таблицы базовой стратегии для одного набора правил. После
// построения только читается.
type Chart struct {
	rules game.Rules
	hard  [22][12]cell
	soft  [22][12]cell
	pairs [12][12]cell
}

func BuildChart(rules game.Rules) *Chart {
	c := &Chart{rules: rules}
	c.fillHard()
	c.fillSoft()
	c.fillPairs()
	return c
}

func (c *Chart) Rules() game.Rules {
	return c.rules
}

func between(up, lo, hi int) bool {
	return up >= lo && up <= hi
}

func (c *Chart) fillHard() {
	h17 := c.rules.DealerHitsSoft17

	for up := minUp; up <= maxUp; up++ {
		for total := 4; total <= 8; total++ {
			c.hard[total][up] = cellHit
		}

		c.hard[9][up] = cellHit
		if between(up, 3, 6) {
			c.hard[9][up] = cellDouble
		}

		c.hard[10][up] = cellHit
		if between(up, 2, 9) {
			c.hard[10][up] = cellDouble
		}

		c.hard[11][up] = cellDouble
		if up == 11 && !h17 {
			c.hard[11][up] = cellHit
		}

		c.hard[12][up] = cellHit
		if between(up, 4, 6) {
			c.hard[12][up] = cellStand
		}

		for total := 13; total <= 16; total++ {
			c.hard[total][up] = cellHit
			if between(up, 2, 6) {
				c.hard[total][up] = cellStand
			}
		}
		if up == 10 || (up == 11 && h17) {
			c.hard[15][up] = cellSurrender
		}
		if up >= 9 {
			c.hard[16][up] = cellSurrender
		}

		c.hard[17][up] = cellStand
		if up == 11 && h17 {
			c.hard[17][up] = cellSurrender
		}

		for total := 18; total <= 21; total++ {
			c.hard[total][up] = cellStand
		}
	}
}

func (c *Chart) fillSoft() {
	h17 := c.rules.DealerHitsSoft17

	for up := minUp; up <= maxUp; up++ {
		c.soft[12][up] = cellHit

		for total := 13; total <= 17; total++ {
			c.soft[total][up] = cellHit
		}
		if between(up, 5, 6) {
			c.soft[13][up] = cellDouble
			c.soft[14][up] = cellDouble
		}
		if between(up, 4, 6) {
			c.soft[15][up] = cellDouble
			c.soft[16][up] = cellDouble
		}
		if between(up, 3, 6) {
			c.soft[17][up] = cellDouble
		}

		switch {
		case between(up, 3, 6) || (up == 2 && h17):
			c.soft[18][up] = cellDoubleStand
		case up == 2 || up == 7 || up == 8:
			c.soft[18][up] = cellStand
		default:
			c.soft[18][up] = cellHit
		}

		c.soft[19][up] = cellStand
		if up == 6 && h17 {
			c.soft[19][up] = cellDoubleStand
		}

		c.soft[20][up] = cellStand
		c.soft[21][up] = cellStand
	}
}

func (c *Chart) fillPairs() {
	das := c.rules.DoubleAfterSplit

	for up := minUp; up <= maxUp; up++ {
		c.pairs[11][up] = cellSplit
		c.pairs[10][up] = cellStand
		c.pairs[8][up] = cellSplit

		c.pairs[9][up] = cellStand
		if between(up, 2, 6) || up == 8 || up == 9 {
			c.pairs[9][up] = cellSplit
		}

		c.pairs[7][up] = cellHit
		if between(up, 2, 7) {
			c.pairs[7][up] = cellSplit
		}

		c.pairs[6][up] = cellHit
		if between(up, 3, 6) || (up == 2 && das) {
			c.pairs[6][up] = cellSplit
		}

		c.pairs[5][up] = cellHit
		if between(up, 2, 9) {
			c.pairs[5][up] = cellDouble
		}

		c.pairs[4][up] = cellHit
		if das && between(up, 5, 6) {
			c.pairs[4][up] = cellSplit
		}

		for _, v := range []int{2, 3} {
			c.pairs[v][up] = cellHit
			if between(up, 4, 7) || (das && between(up, 2, 3)) {
				c.pairs[v][up] = cellSplit
			}
		}
	}
}

// Rows текстовое представление таблиц: строка на сумму, колонки 2..A.
func (c *Chart) Rows() map[string]map[string][]string {
	out := map[string]map[string][]string{
		"hard":  {},
		"soft":  {},
		"pairs": {},
	}

	row := func(cells [12]cell) []string {
		r := make([]string, 0, maxUp-minUp+1)
		for up := minUp; up <= maxUp; up++ {
			r = append(r, cells[up].String())
		}
		return r
	}

	for total := 5; total <= 21; total++ {
		out["hard"][strconv.Itoa(total)] = row(c.hard[total])
	}
	for total := 13; total <= 21; total++ {
		out["soft"][strconv.Itoa(total)] = row(c.soft[total])
	}
	for v := 2; v <= 11; v++ {
		label := strconv.Itoa(v)
		if v == 11 {
			label = "A"
		}
		out["pairs"][label] = row(c.pairs[v])
	}
	return out
}
