// Package tlsutil 提供集中式 TLS 配置（TLS 1.2+，仅 AEAD 密码套件），
// 供运维 HTTP 服务端以及 Deepgram / ElevenLabs / 推理后端的出站客户端使用。
package tlsutil
