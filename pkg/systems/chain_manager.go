package systems

import (
	"log"

	"github.com/decker502/beatpreview/pkg/chart"
	"github.com/decker502/beatpreview/pkg/components"
	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/ecs"
	"github.com/decker502/beatpreview/pkg/types"
	"github.com/decker502/beatpreview/pkg/utils"
)

// VolumeSettings 打击音音量设置
// 两个通道任一为 0 时不预约链节打击音
type VolumeSettings interface {
	HitsoundVolume() float64
	ChainVolume() float64
}

// LinkPool 链节对象池
type LinkPool = ecs.ObjectPool[components.LinkObject]

// NewLinkPool 创建链节对象池
//
// 参数：
//   - capacity: 池容量（同时可见链节数量上限）
//   - newEmitter: 为每个新建的池对象创建音源，可为 nil（无音频）
func NewLinkPool(capacity int, newEmitter func() components.AudioEmitter) *LinkPool {
	return ecs.NewObjectPool(capacity, func() *components.LinkObject {
		obj := &components.LinkObject{}
		if newEmitter != nil {
			obj.Emitter = newEmitter()
		}
		return obj
	}, components.ResetLinkObject)
}

// ChainManagerDeps ChainManager 的外部依赖
type ChainManagerDeps struct {
	Cursor  Cursor
	Window  SpawnWindow
	Layout  Layout
	Pool    *LinkPool
	Volumes VolumeSettings // 可为 nil：不预约打击音
	Config  *config.PreviewerConfig
}

// ChainManager 链与链节管理器
//
// 职责：
//   - 加载时把链展开为按节拍排序的链节
//   - 每次游标节拍变化时，在生成窗口内生成/更新链节，窗口外释放链节
//   - 生成链节时预约打击音，打击音未播完的链节只隐藏不释放
//
// 链节状态：未生成 → 生成（可见）→ 生成（隐藏，打击音拖尾）→ 释放 → 未生成。
// 非线程安全，由场景在主循环中驱动。
type ChainManager struct {
	cursor  Cursor
	window  SpawnWindow
	layout  Layout
	pool    *LinkPool
	volumes VolumeSettings
	cfg     *config.PreviewerConfig

	chains  []chart.Chain
	links   []components.ChainLink
	spawned []int // 已生成链节在 links 中的下标（无序）

	useSimpleMaterial bool
	lastBeat          float64
	updated           bool
	exhaustedLogged   bool
}

// NewChainManager 创建链管理器
func NewChainManager(deps ChainManagerDeps) *ChainManager {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultPreviewerConfig()
	}
	deps.Pool.SetStrict(cfg.Debug)

	return &ChainManager{
		cursor:            deps.Cursor,
		window:            deps.Window,
		layout:            deps.Layout,
		pool:              deps.Pool,
		volumes:           deps.Volumes,
		cfg:               cfg,
		useSimpleMaterial: cfg.UseSimpleNoteMaterial,
	}
}

// LoadFromDifficulty 加载难度中的所有链（burstSliders）
func (cm *ChainManager) LoadFromDifficulty(d *chart.Difficulty) {
	if d == nil {
		cm.LoadChains(nil)
		return
	}
	cm.LoadChains(d.Chains())
}

// LoadChains 加载链，替换之前的全部状态
//
// 释放所有已生成的链节，重置对象池容量，展开并排序链与链节，
// 然后按游标当前节拍立即更新一次可见性。没有链时两个集合都为空。
func (cm *ChainManager) LoadChains(chains []chart.Chain) {
	cm.ClearAllSpawned()
	cm.pool.SetCapacity(cm.cfg.ChainLinkPoolSize)
	cm.exhaustedLogged = false

	newChains := make([]chart.Chain, 0, len(chains))
	var newLinks []components.ChainLink
	for _, c := range chains {
		newChains = append(newChains, c)
		newLinks = append(newLinks, ExpandChain(c, cm.cfg.Grid)...)
	}
	chart.SortObjectsByBeat(newChains)
	chart.SortObjectsByBeat(newLinks)

	cm.chains = newChains
	cm.links = newLinks

	if len(chains) > 0 {
		log.Printf("[ChainManager] Loaded %d chains (%d links)", len(cm.chains), len(cm.links))
	}

	cm.UpdateVisibility(cm.cursor.CurrentBeat())
}

// NeedsUpdate 节拍与上次更新时不同时返回 true
// 场景用它保证每个不同的节拍只更新一次
func (cm *ChainManager) NeedsUpdate(beat float64) bool {
	return !cm.updated || beat != cm.lastBeat
}

// UpdateVisibility 按当前节拍更新链节
//
// 第一步：窗口外的已生成链节，打击音仍在播放的只隐藏，否则释放；
// 窗口内被隐藏的链节重新显示。
// 第二步：从第一个窗口内的链节开始向后生成/更新，遇到第一个窗口外的链节即停止。
func (cm *ChainManager) UpdateVisibility(currentBeat float64) {
	cm.lastBeat = currentBeat
	cm.updated = true

	cm.clearOutsideLinks()

	if len(cm.links) == 0 {
		return
	}

	first := -1
	for i := range cm.links {
		if cm.window.InWindow(cm.links[i].Beat) {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}

	for i := first; i < len(cm.links); i++ {
		if !cm.window.InWindow(cm.links[i].Beat) {
			break
		}
		cm.updateLink(i)
	}
}

// clearOutsideLinks 释放或隐藏窗口外的链节
func (cm *ChainManager) clearOutsideLinks() {
	for i := len(cm.spawned) - 1; i >= 0; i-- {
		link := &cm.links[cm.spawned[i]]

		obj, ok := cm.pool.Get(link.Slot.Visual)
		if !ok {
			// 句柄已失效，只清理记录
			log.Printf("[ChainManager] Warning: stale handle %v for link at beat %.3f", link.Slot.Visual, link.Beat)
			link.Slot.Clear()
			cm.removeSpawned(i)
			continue
		}

		if !cm.window.InWindow(link.Beat) {
			if link.Slot.Emitter != nil && link.Slot.Emitter.IsPlaying() {
				// 打击音未播完，只隐藏
				obj.Visual.DisableVisual()
				continue
			}
			cm.releaseLink(link)
			cm.removeSpawned(i)
		} else if !obj.Visual.Visible {
			obj.Visual.EnableVisual()
		}
	}
}

// removeSpawned 从已生成列表中移除第 i 项（与末尾交换）
func (cm *ChainManager) removeSpawned(i int) {
	last := len(cm.spawned) - 1
	cm.spawned[i] = cm.spawned[last]
	cm.spawned = cm.spawned[:last]
}

// updateLink 生成（如需要）并更新链节姿态
func (cm *ChainManager) updateLink(index int) {
	link := &cm.links[index]
	linkTime := cm.cursor.BeatToTime(link.Beat)

	var obj *components.LinkObject
	if link.Spawned() {
		var ok bool
		if obj, ok = cm.pool.Get(link.Slot.Visual); !ok {
			return
		}
	} else {
		var ok bool
		if obj, ok = cm.spawnLink(index, linkTime); !ok {
			return
		}
	}

	cm.updateLinkPose(link, obj, linkTime)
}

// spawnLink 从对象池取出对象并挂到链节上
func (cm *ChainManager) spawnLink(index int, linkTime float64) (*components.LinkObject, bool) {
	link := &cm.links[index]

	handle, obj, ok := cm.pool.Acquire()
	if !ok {
		if !cm.exhaustedLogged {
			log.Printf("[ChainManager] Warning: link pool exhausted (capacity %d), extra links are not drawn", cm.pool.Capacity())
			cm.exhaustedLogged = true
		}
		return nil, false
	}

	link.Slot.Visual = handle
	link.Slot.Emitter = obj.Emitter

	cm.applyMaterial(link, obj)
	obj.Visual.Active = true
	obj.Visual.EnableVisual()

	if cm.cursor.Playing() && cm.hitsoundsEnabled() && obj.Emitter != nil {
		obj.Emitter.PlayScheduled(linkTime)
	}

	cm.spawned = append(cm.spawned, index)
	return obj, true
}

// applyMaterial 按颜色与画质设置材质
func (cm *ChainManager) applyMaterial(link *components.ChainLink, obj *components.LinkObject) {
	kind := components.MaterialComplex
	if cm.useSimpleMaterial {
		kind = components.MaterialSimple
	}
	obj.Visual.Material = components.Material{Kind: kind, Color: link.Color}
	obj.Visual.DotMaterial = components.Material{Kind: components.MaterialArrow, Color: link.Color}
}

// updateLinkPose 更新链节的世界坐标与朝向
func (cm *ChainManager) updateLinkPose(link *components.ChainLink, obj *components.LinkObject, linkTime float64) {
	anim := cm.cfg.Animation

	pos := components.Vec3{
		X: link.X,
		Y: link.Y,
		Z: cm.layout.ZPosition(linkTime),
	}
	if anim.MovementAnimation {
		pos.Y = cm.layout.ObjectY(anim.ObjectFloorOffset, link.Y, linkTime)
	}

	obj.Visual.Position = pos
	obj.Visual.Angle = LinkAngle(link.Angle, linkTime, cm.cursor.CurrentTime(), cm.cursor.ReactionTime(), anim)
}

// LinkAngle 旋转落位动画
//
// 跳跃时间 jumpTime = now + reactionTime。链节时间晚于 jumpTime 时角度为 0；
// 在 jumpTime 之前长度为 reactionTime·RotationAnimationTime 的窗口内，
// 角度按 EaseOutSine 从 0 过渡到目标角度；之后为目标角度。
func LinkAngle(target, linkTime, now, reactionTime float64, anim config.AnimationConfig) float64 {
	if !anim.RotationAnimation {
		return target
	}

	jumpTime := now + reactionTime
	rotationLength := reactionTime * anim.RotationAnimationTime

	if linkTime > jumpTime {
		return 0
	}
	if linkTime > jumpTime-rotationLength {
		timeSinceJump := reactionTime - (linkTime - now)
		return target * utils.EaseOutSine(timeSinceJump/rotationLength)
	}
	return target
}

// releaseLink 停止音源、归还对象并清空槽位
func (cm *ChainManager) releaseLink(link *components.ChainLink) {
	if link.Slot.Emitter != nil {
		link.Slot.Emitter.Stop()
	}
	if !cm.pool.Release(link.Slot.Visual) {
		log.Printf("[ChainManager] Warning: release of stale handle %v", link.Slot.Visual)
	}
	link.Slot.Clear()
}

// ClearAllSpawned 释放所有已生成的链节
func (cm *ChainManager) ClearAllSpawned() {
	for _, index := range cm.spawned {
		cm.releaseLink(&cm.links[index])
	}
	cm.spawned = cm.spawned[:0]
}

// RescheduleSounds 播放状态变化时重新预约已生成链节的打击音
// 暂停时什么也不做（暂停由音频层统一停止）。隐藏的拖尾链节不重新预约。
func (cm *ChainManager) RescheduleSounds(isPlaying bool) {
	if !isPlaying || !cm.hitsoundsEnabled() {
		return
	}

	for _, index := range cm.spawned {
		link := &cm.links[index]
		if link.Slot.Emitter == nil {
			continue
		}
		if obj, ok := cm.pool.Get(link.Slot.Visual); !ok || !obj.Visual.Visible {
			continue
		}
		link.Slot.Emitter.PlayScheduled(cm.cursor.BeatToTime(link.Beat))
	}
}

func (cm *ChainManager) hitsoundsEnabled() bool {
	return cm.volumes != nil && cm.volumes.HitsoundVolume() > 0 && cm.volumes.ChainVolume() > 0
}

// HasChainHeadAt 是否有链头恰好位于该节拍、网格位置和颜色
func (cm *ChainManager) HasChainHeadAt(beat float64, x, y int, color types.NoteColor) bool {
	for _, c := range chart.ObjectsOnBeat(cm.chains, beat) {
		if c.X == x && c.Y == y && c.Color == color {
			return true
		}
	}
	return false
}

// SetUseSimpleNoteMaterial 切换简化材质，立即应用到已生成的链节
func (cm *ChainManager) SetUseSimpleNoteMaterial(enabled bool) {
	if cm.useSimpleMaterial == enabled {
		return
	}
	cm.useSimpleMaterial = enabled
	for _, index := range cm.spawned {
		link := &cm.links[index]
		if obj, ok := cm.pool.Get(link.Slot.Visual); ok {
			cm.applyMaterial(link, obj)
		}
	}
}

// Chains 返回按节拍排序的链（只读）
func (cm *ChainManager) Chains() []chart.Chain {
	return cm.chains
}

// Links 返回按节拍排序的链节（只读）
func (cm *ChainManager) Links() []components.ChainLink {
	return cm.links
}

// SpawnedCount 返回已生成（可见或拖尾）的链节数量
func (cm *ChainManager) SpawnedCount() int {
	return len(cm.spawned)
}

// ForEachVisible 遍历当前可见的链节及其渲染对象
func (cm *ChainManager) ForEachVisible(fn func(link *components.ChainLink, visual *components.LinkVisual)) {
	for _, index := range cm.spawned {
		link := &cm.links[index]
		obj, ok := cm.pool.Get(link.Slot.Visual)
		if !ok || !obj.Visual.Visible {
			continue
		}
		fn(link, &obj.Visual)
	}
}
