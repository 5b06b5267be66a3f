// Package sitehash 计算站点的确定性指纹。
//
// 指纹由站点主域名、进程级加密密钥和固定命名空间串联后取 md5 得到，
// 相同输入永远产生相同输出，可安全用作索引分区键等长期外部标识。
package sitehash

import (
	"crypto/md5"
	"encoding/hex"
)

// Namespace 固定命名空间
// 混入指纹里，避免与其他子系统对同一域名算出的摘要互相冲突
const Namespace = "sitesearch"

// Hash 返回 md5(domain + encryptionKey + Namespace) 的十六进制小写表示
func Hash(domain, encryptionKey string) string {
	sum := md5.Sum([]byte(domain + encryptionKey + Namespace))
	return hex.EncodeToString(sum[:])
}
