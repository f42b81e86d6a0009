package speech

import (
	"encoding/binary"
	"math"
)

// EnergyVAD 是基于 RMS 能量阈值的简单 VAD, 输入为 16-bit
// little-endian PCM 帧. 适用于开发与测试环境; 生产部署可替换为
// 模型驱动的实现, 接口不变。
type EnergyVAD struct {
	cfg VADConfig

	active    bool
	speechRun int
	quietRun  int
}

var _ VAD = (*EnergyVAD)(nil)

// NewEnergyVAD 创建能量 VAD. 零值配置字段取默认值.
func NewEnergyVAD(cfg VADConfig) *EnergyVAD {
	def := DefaultVADConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.HangoverFrames <= 0 {
		cfg.HangoverFrames = def.HangoverFrames
	}
	if cfg.MinSpeechFrames <= 0 {
		cfg.MinSpeechFrames = def.MinSpeechFrames
	}
	return &EnergyVAD{cfg: cfg}
}

// Process 消费一帧 PCM 音频并返回边界事件.
func (v *EnergyVAD) Process(frame []byte) SpeechEvent {
	loud := frameRMS(frame) > v.cfg.Threshold

	if !v.active {
		if !loud {
			v.speechRun = 0
			return EventNone
		}
		v.speechRun++
		if v.speechRun < v.cfg.MinSpeechFrames {
			return EventNone
		}
		v.active = true
		v.speechRun = 0
		v.quietRun = 0
		return EventSpeechStart
	}

	if loud {
		v.quietRun = 0
		return EventNone
	}
	v.quietRun++
	if v.quietRun < v.cfg.HangoverFrames {
		return EventNone
	}
	v.active = false
	v.quietRun = 0
	return EventSpeechEnd
}

// Speaking 返回当前是否处于话语中.
func (v *EnergyVAD) Speaking() bool {
	return v.active
}

// Reset 清空内部状态.
func (v *EnergyVAD) Reset() {
	v.active = false
	v.speechRun = 0
	v.quietRun = 0
}

// frameRMS 计算一帧 16-bit LE PCM 的归一化 RMS 能量 (0..1).
// 末尾不完整的采样被忽略。
func frameRMS(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		f := float64(s) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(n))
}
