// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
包 speech 提供语音识别 (STT)、语音合成 (TTS) 与话语边界检测 (VAD)
的统一接入层，屏蔽服务商在音频格式、鉴权方式和响应结构上的差异。

# 概述

语音回合的三段外部协作都在本包之后：用户音频经 Recognizer 转写为
文本交给会话处理，会话回复经 Synthesizer 按当前坐席的声音绑定合成
音频，VAD 在音频帧流上切分话语边界。

典型使用场景：

  - 将整段话语音频（或音频 URL）转写为文本。
  - 通过实时 WebSocket 流边采集边转写，按 speech_final 切分回合。
  - 将回合回复按 persona 的 voice ID 合成为音频流。
  - 用能量 VAD 在原始 PCM 帧上检测话语起止。

# 核心接口

  - Recognizer：语音转文本接口，包含 Transcribe、TranscribeFile
    与 SupportedFormats 方法。
  - Synthesizer：文本转语音接口，包含 Synthesize、SynthesizeToFile
    与 ListVoices 方法。
  - VAD：话语边界检测接口，包含 Process、Speaking 与 Reset 方法。

# 主要能力

  - Deepgram STT 适配：DeepgramRecognizer 接入 Nova REST API，
    支持 URL 转写、说话人分离与智能格式化；Live 方法建立
    实时 WebSocket 转写流（KeepAlive 心跳、CloseStream 冲刷）。
  - ElevenLabs TTS 适配：ElevenLabsSynthesizer 接入 ElevenLabs API，
    默认模型 eleven_multilingual_v2，请求级 voice ID 优先。
  - 能量 VAD：EnergyVAD 在 16-bit PCM 帧上做 RMS 阈值检测，
    带起始去抖与结束挂起窗口。
  - 配置管理：每个供应商提供独立的 Config 结构与 Default 工厂函数。
*/
package speech
