package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/google/uuid"
)

type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type client struct {
	base  string
	http  *http.Client
	token string
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "storefront base url")
	carID := flag.Int64("car", 1, "car id to put into the cart")
	workers := flag.Int("n", 8, "concurrent checkout requests")
	flag.Parse()

	fmt.Println("=== 下单幂等性测试 ===")

	jar, _ := cookiejar.New(nil)
	c := &client{base: *baseURL, http: &http.Client{Jar: jar, Timeout: 10 * time.Second}}

	// 1. 注册/登录
	username := "idem_" + uuid.NewString()[:8]
	if _, _, err := c.do(http.MethodPost, "/api/register", map[string]string{
		"username": username, "email": username + "@example.com", "password": "testpass",
	}, nil); err != nil {
		fmt.Printf("❌ 注册失败: %v\n", err)
		return
	}
	_, resp, err := c.do(http.MethodPost, "/api/login", map[string]string{"username": username, "password": "testpass"}, nil)
	if err != nil || resp.Code != 0 {
		fmt.Printf("❌ 登录失败: %v %+v\n", err, resp)
		return
	}
	var login struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(resp.Data, &login)
	c.token = login.Token
	fmt.Printf("✅ 登录成功: %s\n", username)

	// 2. 加入购物车，cookie jar 保存会话
	if status, resp, err := c.do(http.MethodPost, fmt.Sprintf("/api/cart/car/%d", *carID), nil, nil); err != nil || status != http.StatusOK {
		fmt.Printf("❌ 加入购物车失败: status=%d err=%v resp=%+v\n", status, err, resp)
		return
	}
	fmt.Printf("✅ 车辆 %d 已加入购物车\n", *carID)

	// 3. 同一会话、同一幂等键并发下单
	key := uuid.NewString()
	statuses := make(map[int]int)
	orderIDs := make(map[int64]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, resp, err := c.do(http.MethodPost, "/api/checkout",
				map[string]string{"buyer_number": "+15550000"},
				map[string]string{"Idempotency-Key": key})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				statuses[-1]++
				return
			}
			statuses[status]++
			var res struct {
				Order struct {
					ID int64 `json:"id"`
				} `json:"order"`
			}
			if resp.Code == 0 && json.Unmarshal(resp.Data, &res) == nil && res.Order.ID > 0 {
				orderIDs[res.Order.ID] = struct{}{}
			}
		}()
	}
	wg.Wait()
	fmt.Printf("并发 %d 次下单，状态码分布: %v\n", *workers, statuses)

	// 4. 验证只生成一张订单
	_, resp, err = c.do(http.MethodGet, "/api/orders", nil, nil)
	if err != nil {
		fmt.Printf("❌ 查询订单失败: %v\n", err)
		return
	}
	var orders []json.RawMessage
	_ = json.Unmarshal(resp.Data, &orders)

	fmt.Println("\n=== 测试结果 ===")
	if len(orders) == 1 && len(orderIDs) == 1 && statuses[http.StatusCreated] == 1 {
		fmt.Println("✅ 幂等性测试通过！只生成了一张订单")
	} else {
		fmt.Println("❌ 幂等性测试失败！")
		fmt.Printf("   订单数=%d 返回的订单号=%v 201 次数=%d\n", len(orders), orderIDs, statuses[http.StatusCreated])
	}
}

func (c *client) do(method, path string, body interface{}, headers map[string]string) (int, *apiResponse, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, &out, nil
}
