package chart

import "sort"

// BeatObject 带节拍的谱面物件
type BeatObject interface {
	GetBeat() float64
}

// SortObjectsByBeat 按节拍稳定排序（原地）
// 同一节拍的物件保持原有顺序
func SortObjectsByBeat[T BeatObject](objects []T) {
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].GetBeat() < objects[j].GetBeat()
	})
}

// FirstIndexAtOrAfter 在按节拍排序的切片中二分查找第一个 beat >= 给定节拍的下标
// 不存在时返回 len(objects)
func FirstIndexAtOrAfter[T BeatObject](objects []T, beat float64) int {
	return sort.Search(len(objects), func(i int) bool {
		return objects[i].GetBeat() >= beat
	})
}

// ObjectsOnBeat 返回排序切片中节拍恰好等于 beat 的物件（共享底层数组）
func ObjectsOnBeat[T BeatObject](objects []T, beat float64) []T {
	start := FirstIndexAtOrAfter(objects, beat)
	end := start
	for end < len(objects) && objects[end].GetBeat() == beat {
		end++
	}
	return objects[start:end]
}
