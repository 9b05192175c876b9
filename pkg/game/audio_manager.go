package game

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// AudioManager 歌曲播放管理器
// 职责：
//   - 加载并播放当前谱面的歌曲
//   - 跟随时间轴的播放/暂停/跳转
//   - 应用 SettingsManager 中的音乐音量
//
// 没有歌曲时所有操作都是空操作，时间轴仍由 TimeManager 自行推进。
type AudioManager struct {
	resourceManager *ResourceManager // 资源管理器（用于加载音频）
	settingsManager *SettingsManager // 设置管理器（用于读取音量设置，可为 nil）
	song            *audio.Player    // 当前歌曲播放器
	songPath        string           // 当前歌曲路径
	songLength      float64          // 歌曲长度（秒）
}

// NewAudioManager 创建新的歌曲播放管理器
//
// 参数：
//   - rm: ResourceManager 实例（用于加载音频文件）
//   - sm: SettingsManager 实例（用于读取音量设置，可为 nil）
//
// 返回：
//   - *AudioManager: 音频管理器实例
func NewAudioManager(rm *ResourceManager, sm *SettingsManager) *AudioManager {
	return &AudioManager{
		resourceManager: rm,
		settingsManager: sm,
	}
}

// LoadSong 加载歌曲，替换当前歌曲
//
// 返回：
//   - float64: 歌曲长度（秒）
//   - error: 加载错误
func (am *AudioManager) LoadSong(path string) (float64, error) {
	player, length, err := am.resourceManager.LoadSong(path)
	if err != nil {
		return 0, err
	}
	am.attach(path, player, length)
	return length, nil
}

// SetSong 使用已创建的播放器（例如并发加载阶段创建的）
func (am *AudioManager) SetSong(path string, player *audio.Player, length float64) {
	am.attach(path, player, length)
}

func (am *AudioManager) attach(path string, player *audio.Player, length float64) {
	am.Stop()
	am.song = player
	am.songPath = path
	am.songLength = length
	am.song.SetVolume(am.getMusicVolume())
	log.Printf("[AudioManager] Song ready: %s (volume: %.2f)", path, am.getMusicVolume())
}

// HasSong 是否已加载歌曲
func (am *AudioManager) HasSong() bool {
	return am.song != nil
}

// SongLength 返回歌曲长度（秒）
func (am *AudioManager) SongLength() float64 {
	return am.songLength
}

// SetPlaying 跟随时间轴的播放状态
//
// 参数：
//   - playing: 是否播放
//   - songTime: 当前歌曲时间（秒），播放前先对齐位置
func (am *AudioManager) SetPlaying(playing bool, songTime float64) {
	if am.song == nil {
		return
	}
	if !playing {
		am.song.Pause()
		return
	}
	am.Seek(songTime)
	am.song.Play()
}

// Seek 跳转到指定歌曲时间
func (am *AudioManager) Seek(songTime float64) {
	if am.song == nil {
		return
	}
	if songTime < 0 {
		songTime = 0
	}
	if err := am.song.SetPosition(time.Duration(songTime * float64(time.Second))); err != nil {
		log.Printf("[AudioManager] Warning: Failed to seek song %s: %v", am.songPath, err)
	}
}

// Position 返回歌曲播放器的当前位置（秒）；没有歌曲时返回 -1
func (am *AudioManager) Position() float64 {
	if am.song == nil {
		return -1
	}
	return am.song.Position().Seconds()
}

// Stop 停止并卸下当前歌曲
func (am *AudioManager) Stop() {
	if am.song != nil {
		am.song.Pause()
		am.song = nil
		am.songPath = ""
		am.songLength = 0
	}
}

// SetMusicVolume 设置音乐音量
// 此方法立即应用到当前歌曲并写入设置
//
// 参数：
//   - volume: 音量值 (0.0 ~ 1.0)
func (am *AudioManager) SetMusicVolume(volume float64) {
	if am.settingsManager != nil {
		am.settingsManager.SetMusicVolume(volume)
		volume = am.settingsManager.GetSettings().MusicVolume
	}

	if am.song != nil {
		am.song.SetVolume(volume)
	}
}

// GetMusicVolume 获取当前音乐音量
func (am *AudioManager) GetMusicVolume() float64 {
	return am.getMusicVolume()
}

// getMusicVolume 获取音乐音量设置
func (am *AudioManager) getMusicVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().MusicVolume
	}
	return defaultMusicVolume
}
