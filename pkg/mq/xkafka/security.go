package xkafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
)

// 安全相关属性键（librdkafka 命名）。恢复 producer 只支持这里列出的键，
// 其余 ssl.* / sasl.* 键会让 ClientOptions 返回 ErrUnsupportedConfig。
const (
	KeySecurityProtocol       = "security.protocol"
	KeySSLCALocation          = "ssl.ca.location"
	KeySSLCertificateLocation = "ssl.certificate.location"
	KeySSLKeyLocation         = "ssl.key.location"
	KeySSLEndpointAlgorithm   = "ssl.endpoint.identification.algorithm"
	KeySSLVerifyCertificate   = "enable.ssl.certificate.verification"
	KeySASLMechanisms         = "sasl.mechanisms"
	KeySASLMechanism          = "sasl.mechanism"
	KeySASLUsername           = "sasl.username"
	KeySASLPassword           = "sasl.password"
)

var supportedSecurityKeys = map[string]bool{
	KeySecurityProtocol:       true,
	KeySSLCALocation:          true,
	KeySSLCertificateLocation: true,
	KeySSLKeyLocation:         true,
	KeySSLEndpointAlgorithm:   true,
	KeySSLVerifyCertificate:   true,
	KeySASLMechanisms:         true,
	KeySASLMechanism:          true,
	KeySASLUsername:           true,
	KeySASLPassword:           true,
}

type security struct {
	tls  *tls.Config
	sasl sasl.Mechanism
}

// parseSecurity 把 security.protocol 与 ssl.* / sasl.* 映射为 TLS 配置和 SASL 机制。
// 无法映射的安全键一律报错，不静默忽略。
func parseSecurity(props map[string]string) (security, error) {
	var sec security
	for key := range props {
		if isSecurityKey(key) && !supportedSecurityKeys[key] {
			return sec, fmt.Errorf("%w: %s", ErrUnsupportedConfig, key)
		}
	}

	var useTLS, useSASL bool
	switch protocol := strings.ToUpper(strings.TrimSpace(props[KeySecurityProtocol])); protocol {
	case "", "PLAINTEXT":
	case "SSL":
		useTLS = true
	case "SASL_PLAINTEXT":
		useSASL = true
	case "SASL_SSL":
		useTLS, useSASL = true, true
	default:
		return sec, fmt.Errorf("%w: %s=%q", ErrUnsupportedConfig, KeySecurityProtocol, protocol)
	}

	var err error
	if useTLS {
		if sec.tls, err = tlsConfig(props); err != nil {
			return sec, err
		}
	}
	if useSASL {
		if sec.sasl, err = saslMechanism(props); err != nil {
			return sec, err
		}
	}
	return sec, nil
}

func isSecurityKey(key string) bool {
	return strings.HasPrefix(key, "ssl.") || strings.HasPrefix(key, "sasl.") ||
		key == KeySSLVerifyCertificate
}

func tlsConfig(props map[string]string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	// "probe" 表示使用系统根证书
	if ca := strings.TrimSpace(props[KeySSLCALocation]); ca != "" && ca != "probe" {
		data, err := os.ReadFile(filepath.Clean(ca))
		if err != nil {
			return nil, fmt.Errorf("xkafka: read %s: %w", KeySSLCALocation, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(data) {
			return nil, fmt.Errorf("xkafka: %s %q contains no PEM certificate", KeySSLCALocation, ca)
		}
		cfg.RootCAs = pool
	}

	cert := strings.TrimSpace(props[KeySSLCertificateLocation])
	key := strings.TrimSpace(props[KeySSLKeyLocation])
	switch {
	case cert != "" && key != "":
		pair, err := tls.LoadX509KeyPair(filepath.Clean(cert), filepath.Clean(key))
		if err != nil {
			return nil, fmt.Errorf("xkafka: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	case cert != "" || key != "":
		return nil, fmt.Errorf("%w: %s and %s must be set together",
			ErrUnsupportedConfig, KeySSLCertificateLocation, KeySSLKeyLocation)
	}

	// Go 无法只关闭主机名校验而保留证书链校验
	switch alg := strings.ToLower(strings.TrimSpace(props[KeySSLEndpointAlgorithm])); alg {
	case "", "https":
	default:
		return nil, fmt.Errorf("%w: %s=%q", ErrUnsupportedConfig, KeySSLEndpointAlgorithm, alg)
	}

	if v, ok := props[KeySSLVerifyCertificate]; ok {
		verify, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("xkafka: invalid %s %q", KeySSLVerifyCertificate, v)
		}
		cfg.InsecureSkipVerify = !verify //nolint:gosec // 由配置显式关闭
	}
	return cfg, nil
}

func saslMechanism(props map[string]string) (sasl.Mechanism, error) {
	name := strings.TrimSpace(props[KeySASLMechanisms])
	if name == "" {
		name = strings.TrimSpace(props[KeySASLMechanism])
	}
	user, pass := props[KeySASLUsername], props[KeySASLPassword]

	switch mech := strings.ToUpper(name); mech {
	case "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
		if user == "" || pass == "" {
			return nil, fmt.Errorf("%w: sasl %s requires %s and %s",
				ErrUnsupportedConfig, mech, KeySASLUsername, KeySASLPassword)
		}
		switch mech {
		case "PLAIN":
			return plain.Auth{User: user, Pass: pass}.AsMechanism(), nil
		case "SCRAM-SHA-256":
			return scram.Auth{User: user, Pass: pass}.AsSha256Mechanism(), nil
		default:
			return scram.Auth{User: user, Pass: pass}.AsSha512Mechanism(), nil
		}
	case "":
		// librdkafka 默认 GSSAPI
		return nil, fmt.Errorf("%w: %s is required (GSSAPI is not supported)", ErrUnsupportedConfig, KeySASLMechanism)
	default:
		return nil, fmt.Errorf("%w: %s=%q", ErrUnsupportedConfig, KeySASLMechanism, name)
	}
}
