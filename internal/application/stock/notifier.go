package stock

import (
	"fmt"
	"time"

	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/metrics"
)

// NotifyIfTransitioned devolve a notificação a emitir quando o status do
// componente transicionou, ou nil. Apenas transições importam: variação de
// quantidade dentro do mesmo status nunca notifica.
//
// Mensagens por transição:
//   - * → INDISPONIVEL:  "<nome> está indisponível (0 unidades)"
//   - * → EM_ESTOQUE:    "<nome> está em estoque (<q> unidades)"
//   - * → BAIXO_ESTOQUE: "<nome> está com estoque baixo (<q> unidades)"
func NotifyIfTransitioned(component *entity.Component, previous, current string, quantity int64) *entity.Notification {
	if previous == current {
		return nil
	}

	var message string
	switch current {
	case entity.StatusIndisponivel:
		message = fmt.Sprintf("%s está indisponível (0 unidades)", component.Name)
	case entity.StatusEmEstoque:
		message = fmt.Sprintf("%s está em estoque (%d unidades)", component.Name, quantity)
	case entity.StatusBaixoEstoque:
		message = fmt.Sprintf("%s está com estoque baixo (%d unidades)", component.Name, quantity)
	default:
		return nil
	}

	metrics.NotificationsEmitted.WithLabelValues(current).Inc()
	return &entity.Notification{
		OwnerID:   component.OwnerID,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
